// Package discovery holds the two domain workflows: replacing a user's saved
// artists with the validated subset of a submission, and picking a random
// track from a saved artist for the index page.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"favefm/core/spotify"
	"favefm/logger"
	"favefm/model"
	"favefm/repository"
)

// ErrUpstream marks a failure of the music provider (credential exchange or
// track fetch). Handlers map it to a gateway-level error.
var ErrUpstream = errors.New("music provider unavailable")

// Provider is the external music catalog as the workflows see it.
type Provider interface {
	Token(ctx context.Context) (string, error)
	TopTracks(ctx context.Context, token, artistID string) ([]spotify.Track, error)
	CheckArtist(ctx context.Context, token, artistID string) (bool, error)
}

// Locator maps a song title to a lyrics page URL ("" when unknown).
type Locator interface {
	LyricsLink(ctx context.Context, title string) (string, error)
}

// Outcome is the structured result of a save operation.
type Outcome struct {
	Status int    `json:"status"`
	Reason string `json:"reason"`
}

// Service wires the workflows to storage and the external collaborators.
// The rand source is injected so track selection is deterministic in tests.
type Service struct {
	favorites repository.FavoriteArtistRepository
	provider  Provider
	locator   Locator
	rng       *rand.Rand
}

// NewService creates a discovery service.
func NewService(favorites repository.FavoriteArtistRepository, provider Provider, locator Locator, rng *rand.Rand) *Service {
	return &Service{
		favorites: favorites,
		provider:  provider,
		locator:   locator,
		rng:       rng,
	}
}

// SaveFavorites replaces the user's saved artists with the subset of
// candidates the provider confirms exist.
//
// One bearer token is fetched up front; if that fails the operation aborts
// before anything is deleted. Candidates are then checked one by one, in
// input order, with no deduplication: a submission with repeats stores
// repeats. The stored set is replaced unconditionally once validation has
// run, so a submission where nothing validates still clears the old
// favorites. That clear-on-failure behavior is intentional and load-bearing;
// callers distinguish the two outcomes by Status.
func (s *Service) SaveFavorites(ctx context.Context, username string, candidates []string) (Outcome, error) {
	token, err := s.provider.Token(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	valid := make([]string, 0, len(candidates))
	for _, artistID := range candidates {
		ok, err := s.provider.CheckArtist(ctx, token, artistID)
		if err != nil {
			logger.Warn("[Save] artist check failed, dropping candidate",
				logger.String("artistId", artistID),
				logger.ErrorField(err))
			continue
		}
		if ok {
			valid = append(valid, artistID)
		}
	}

	if err := s.favorites.ReplaceFavorites(username, valid); err != nil {
		return Outcome{}, fmt.Errorf("failed to replace favorites for %s: %w", username, err)
	}

	if len(valid) == 0 {
		logger.Info("[Save] no valid artist IDs in submission",
			logger.String("username", username),
			logger.Int("submitted", len(candidates)))
		return Outcome{Status: 401, Reason: "Invalid artist ID entered"}, nil
	}

	logger.Info("[Save] favorites replaced",
		logger.String("username", username),
		logger.Int("saved", len(valid)))
	return Outcome{Status: 200, Reason: "Artist ID has been saved"}, nil
}

// PickTrack builds the index payload for a user. With no saved artists it
// returns an empty payload without touching the provider. Otherwise it picks
// a saved artist uniformly at random, fetches that artist's top tracks and
// picks one of those uniformly at random.
//
// A provider failure (or an artist with zero top tracks) fails the whole
// request. A lyrics lookup failure only costs the link.
func (s *Service) PickTrack(ctx context.Context, username string) (*model.Playback, error) {
	artistIDs, err := s.favorites.ListFavorites(username)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites for %s: %w", username, err)
	}

	playback := &model.Playback{Username: username}
	if len(artistIDs) == 0 {
		return playback, nil
	}
	playback.HasArtistsSaved = true

	artistID := artistIDs[s.rng.Intn(len(artistIDs))]

	token, err := s.provider.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	tracks, err := s.provider.TopTracks(ctx, token, artistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no top tracks for artist %s", ErrUpstream, artistID)
	}

	track := tracks[s.rng.Intn(len(tracks))]

	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}
	joined := strings.Join(names, ", ")

	playback.SongName = &track.Name
	playback.SongArtist = &joined
	if len(track.Album.Images) > 0 {
		playback.SongImageURL = &track.Album.Images[0].URL
	}
	playback.PreviewURL = track.PreviewURL

	// Title-only lookup; an ambiguous title may land on the wrong page.
	link, err := s.locator.LyricsLink(ctx, track.Name)
	if err != nil {
		logger.Warn("[Index] lyrics lookup failed",
			logger.String("song", track.Name),
			logger.ErrorField(err))
	} else if link != "" {
		playback.GeniusURL = &link
	}

	return playback, nil
}
