package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lienzo/lienzo-go/internal/models"
)

// MapService wraps the geotagging endpoints.
type MapService struct {
	client *Client
}

// NewMapService constructs a MapService over the shared client.
func NewMapService(client *Client) *MapService {
	return &MapService{client: client}
}

// PlacesInView returns the place pins inside the given bounding box.
func (s *MapService) PlacesInView(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]models.PlaceSummary, error) {
	query := url.Values{}
	query.Set("minLat", formatCoord(minLat))
	query.Set("minLon", formatCoord(minLon))
	query.Set("maxLat", formatCoord(maxLat))
	query.Set("maxLon", formatCoord(maxLon))

	var places []models.PlaceSummary
	err := s.client.doJSON(ctx, http.MethodGet, "/map/in-view", query, nil, &places)
	return places, err
}

// PostsForPlace returns one page of publications geotagged at a place.
func (s *MapService) PostsForPlace(ctx context.Context, placeID int64, page Pageable) (Page[models.Publication], error) {
	return getPage[models.Publication](ctx, s.client, fmt.Sprintf("/map/%d/posts", placeID), page.Values(nil))
}

// SearchPlaces resolves free-text queries to candidate places for geotagging.
func (s *MapService) SearchPlaces(ctx context.Context, query string) ([]models.Place, error) {
	values := url.Values{}
	values.Set("query", query)

	var places []models.Place
	err := s.client.doJSON(ctx, http.MethodGet, "/map/search", values, nil, &places)
	return places, err
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
