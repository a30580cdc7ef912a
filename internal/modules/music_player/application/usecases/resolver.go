package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

// DefaultMaxItems caps how many tracks one playlist or mix may expand into.
const DefaultMaxItems = 50

// DefaultClientProfiles returns the extraction configurations tried in order.
// TV and web clients route around upstream format gating that the automatic
// client sometimes trips over; the unconstrained profile is the last resort.
func DefaultClientProfiles() []ports.ClientProfile {
	return []ports.ClientProfile{
		{Name: "tv", PlayerClient: "tv"},
		{Name: "web", PlayerClient: "web"},
		{Name: "auto"},
	}
}

// ResolveInput contains the input for the Resolve use case.
type ResolveInput struct {
	Locator     *domain.SourceLocator
	MaxItems    int // optional, defaults to the service cap
	RequesterID snowflake.ID
}

// ResolveOutput contains the result of the Resolve use case.
type ResolveOutput struct {
	Tracks []*domain.Track
}

// ResolverService turns a validated locator into playable tracks by driving
// the extraction backend through a sequence of client profiles.
type ResolverService struct {
	extractor ports.Extractor
	profiles  []ports.ClientProfile
	limiter   *rate.Limiter
	maxItems  int
}

// NewResolverService creates a new ResolverService with the default profile
// order. maxItems <= 0 selects DefaultMaxItems.
func NewResolverService(extractor ports.Extractor, maxItems int) *ResolverService {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &ResolverService{
		extractor: extractor,
		profiles:  DefaultClientProfiles(),
		// Throttles per-entry re-extraction so a degraded playlist cannot
		// hammer the extraction backend.
		limiter:  rate.NewLimiter(rate.Limit(2), 4),
		maxItems: maxItems,
	}
}

// attemptResult is the outcome of trying one client profile.
type attemptResult struct {
	tracks []*domain.Track
	err    error
}

// Resolve evaluates each client profile in order and returns the first
// profile's tracks. A profile that extracts successfully but yields nothing
// playable does not stop later profiles from being tried. When everything is
// exhausted the error distinguishes total extraction failure from a lack of
// usable encodings, carrying the last underlying error for diagnostics.
func (s *ResolverService) Resolve(ctx context.Context, input ResolveInput) (*ResolveOutput, error) {
	maxItems := input.MaxItems
	if maxItems <= 0 {
		maxItems = s.maxItems
	}
	target := input.Locator.Raw()

	var lastErr error
	extracted := false

	for _, profile := range s.profiles {
		res := s.attempt(ctx, target, profile, maxItems, input.RequesterID)
		if res.err != nil {
			slog.Debug("extraction attempt failed",
				"profile", profile.Name,
				"error", res.err,
			)
			lastErr = res.err
			continue
		}
		extracted = true
		if len(res.tracks) > 0 {
			return &ResolveOutput{Tracks: res.tracks}, nil
		}
	}

	if !extracted {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, lastErr)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w (last error: %v)", ErrNoPlayableFormat, lastErr)
	}
	return nil, ErrNoPlayableFormat
}

// attempt runs one profile against the target and collects its tracks.
func (s *ResolverService) attempt(
	ctx context.Context,
	target string,
	profile ports.ClientProfile,
	maxItems int,
	requesterID snowflake.ID,
) attemptResult {
	item, err := s.extractor.Extract(ctx, target, profile)
	if err != nil {
		return attemptResult{err: err}
	}

	if item.Kind == domain.ItemCollection {
		return attemptResult{
			tracks: s.expandCollection(ctx, item, target, profile, maxItems, requesterID),
		}
	}

	sel, ok := domain.SelectFormat(item)
	if !ok {
		return attemptResult{}
	}
	track := domain.NewTrack(sel, item.Title, item.PageURL(target), item.Headers, requesterID)
	return attemptResult{tracks: []*domain.Track{track}}
}

// expandCollection walks playlist entries up to maxItems. Flat entries are
// re-extracted through their page reference; an entry that cannot be
// recovered is skipped so one bad track does not abort the rest.
func (s *ResolverService) expandCollection(
	ctx context.Context,
	item *domain.ExtractedItem,
	target string,
	profile ports.ClientProfile,
	maxItems int,
	requesterID snowflake.ID,
) []*domain.Track {
	var tracks []*domain.Track

	for _, entry := range item.Entries {
		if len(tracks) >= maxItems {
			break
		}
		if entry == nil {
			continue
		}

		e := entry
		if e.Kind == domain.ItemFlat {
			page := e.PageURL(target)
			if page == "" {
				continue
			}
			if err := s.limiter.Wait(ctx); err != nil {
				break
			}
			full, err := s.extractor.Extract(ctx, page, profile)
			if err != nil {
				slog.Warn("skipping collection entry, re-extraction failed",
					"page", page,
					"profile", profile.Name,
					"error", err,
				)
				continue
			}
			e = full
		}

		sel, ok := domain.SelectFormat(e)
		if !ok {
			continue
		}
		headers := e.Headers
		if headers == nil {
			headers = item.Headers
		}
		tracks = append(tracks, domain.NewTrack(sel, e.Title, e.PageURL(target), headers, requesterID))
	}

	return tracks
}
