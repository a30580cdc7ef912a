package domain

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidLocator is returned when user input is not a supported YouTube URL.
// Free-text search terms are deliberately rejected rather than forwarded to a
// search, so the bot never plays something the user did not literally ask for.
var ErrInvalidLocator = errors.New("not a valid YouTube video or playlist URL")

// LocatorKind distinguishes a single video from a playlist/mix locator.
// A mix and a playlist are indistinguishable until extraction.
type LocatorKind int

const (
	LocatorSingle LocatorKind = iota
	LocatorCollection
)

var (
	watchPattern    = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=[\w-]{11}(?:&\S*)?$`)
	playlistPattern = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/playlist\?list=[\w-]+(?:&\S*)?$`)
	shortPattern    = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtu\.be/[\w-]{11}(?:\?\S*)?$`)
)

// SourceLocator is a validated media locator. It can only be constructed
// through ClassifyLocator, so a SourceLocator never carries a search term.
type SourceLocator struct {
	raw  string
	kind LocatorKind
}

// ClassifyLocator validates and normalizes user input into a SourceLocator.
// Accepted forms: a watch page with an 11-character video ID, a playlist page
// with a list ID, or a youtu.be short link. Anything else, including bare
// search terms, fails with ErrInvalidLocator.
func ClassifyLocator(input string) (*SourceLocator, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrInvalidLocator
	}

	switch {
	case playlistPattern.MatchString(trimmed):
		return &SourceLocator{raw: trimmed, kind: LocatorCollection}, nil
	case watchPattern.MatchString(trimmed):
		// A watch URL carrying a list parameter is a mix; extraction will
		// return a collection for it.
		kind := LocatorSingle
		if strings.Contains(trimmed, "list=") {
			kind = LocatorCollection
		}
		return &SourceLocator{raw: trimmed, kind: kind}, nil
	case shortPattern.MatchString(trimmed):
		return &SourceLocator{raw: trimmed, kind: LocatorSingle}, nil
	}

	return nil, ErrInvalidLocator
}

// Raw returns the trimmed original input.
func (l *SourceLocator) Raw() string {
	return l.raw
}

// Kind returns whether the locator points at a single video or a collection.
func (l *SourceLocator) Kind() LocatorKind {
	return l.kind
}
