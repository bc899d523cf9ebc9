// Spotify-style catalog implementation of [Searcher]
//
// Search API shape based on https://developer.spotify.com/documentation/web-api/reference/search
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

type catalogExternalIDs struct {
	ISRC string `json:"isrc"`
}

type catalogArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type catalogAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// catalogTrack represents one track in a catalog search response.
type catalogTrack struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Artists     []catalogArtist    `json:"artists"`
	Album       catalogAlbum       `json:"album"`
	DurationMS  int                `json:"duration_ms"`
	ExternalIDs catalogExternalIDs `json:"external_ids"`
}

type catalogSearchResponse struct {
	Tracks struct {
		Items []catalogTrack `json:"items"`
	} `json:"tracks"`
}

// CatalogSearcher implements [Searcher] against a Spotify-style catalog API
// using the OAuth2 client-credentials flow for token management.
type CatalogSearcher struct {
	platform string
	baseURL  string
	client   *http.Client
	limit    int
}

// NewCatalogSearcher creates a searcher for the configured catalog.
// The returned client refreshes its access token transparently.
func NewCatalogSearcher(cfg shared.CatalogConfig, limit int) *CatalogSearcher {
	if limit <= 0 {
		limit = 10
	}

	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	client := creds.Client(context.Background())
	client.Timeout = 15 * time.Second

	return &CatalogSearcher{
		platform: cfg.Platform,
		baseURL:  cfg.BaseURL,
		client:   client,
		limit:    limit,
	}
}

func (s *CatalogSearcher) Name() string { return s.platform }

// SearchByISRC queries the catalog with an isrc: filter.
func (s *CatalogSearcher) SearchByISRC(ctx context.Context, isrc string) ([]models.MatchCandidate, error) {
	if isrc == "" {
		return nil, nil
	}
	return s.search(ctx, fmt.Sprintf("isrc:%s", isrc))
}

// SearchByTitleArtist queries the catalog with track and artist filters.
func (s *CatalogSearcher) SearchByTitleArtist(ctx context.Context, title, artist string) ([]models.MatchCandidate, error) {
	query := fmt.Sprintf("track:%s", title)
	if artist != "" {
		query += fmt.Sprintf(" artist:%s", artist)
	}
	return s.search(ctx, query)
}

func (s *CatalogSearcher) search(ctx context.Context, query string) ([]models.MatchCandidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprintf("%d", s.limit))

	endpoint := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSearchFailed, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSearchFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d, body: %s", shared.ErrSearchFailed, resp.StatusCode, string(body))
	}

	var parsed catalogSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", shared.ErrSearchFailed, err)
	}

	candidates := make([]models.MatchCandidate, 0, len(parsed.Tracks.Items))
	for _, item := range parsed.Tracks.Items {
		artist := ""
		if len(item.Artists) > 0 {
			artist = item.Artists[0].Name
		}
		candidates = append(candidates, models.MatchCandidate{
			Platform: s.platform,
			SongID:   item.ID,
			Title:    item.Name,
			Artist:   artist,
			Album:    item.Album.Name,
			Duration: item.DurationMS / 1000,
		})
	}

	return candidates, nil
}
