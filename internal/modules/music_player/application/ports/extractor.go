package ports

import (
	"context"

	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
)

// ClientProfile is one extraction backend configuration. Different player
// clients route around upstream format gating, so resolution walks an ordered
// list of profiles until one yields a playable result.
type ClientProfile struct {
	Name         string
	PlayerClient string // empty lets the backend pick its own client
}

// Extractor drives the extraction backend against a target URL.
// Implementations perform blocking network I/O and must honor the context.
type Extractor interface {
	Extract(ctx context.Context, target string, profile ClientProfile) (*domain.ExtractedItem, error)
}
