package ports

import "github.com/disgoorg/snowflake/v2"

// UserInfo holds display information for a user.
type UserInfo struct {
	DisplayName string
	AvatarURL   string
}

// UserInfoProvider fetches display info for users.
type UserInfoProvider interface {
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)
}
