package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lienzo/lienzo-go/internal/models"
)

// ListOptions selects and orders publication listings.
type ListOptions struct {
	Pageable
	Type models.PublicationType
}

func (o ListOptions) values() url.Values {
	extra := url.Values{}
	if o.Type != "" {
		extra.Set("pubType", string(o.Type))
	}
	return o.Pageable.Values(extra)
}

// PublicationService wraps the publication endpoints.
type PublicationService struct {
	client *Client
}

// NewPublicationService constructs a PublicationService over the shared client.
func NewPublicationService(client *Client) *PublicationService {
	return &PublicationService{client: client}
}

// List returns one page of the global feed.
func (s *PublicationService) List(ctx context.Context, opts ListOptions) (Page[models.Publication], error) {
	return getPage[models.Publication](ctx, s.client, "/publication", opts.values())
}

// ListFollowing returns one page of posts from followed authors only.
func (s *PublicationService) ListFollowing(ctx context.Context, opts ListOptions) (Page[models.Publication], error) {
	return getPage[models.Publication](ctx, s.client, "/publication/following", opts.values())
}

// ListByUser returns one page of a single author's posts.
func (s *PublicationService) ListByUser(ctx context.Context, userID int64, opts ListOptions) (Page[models.Publication], error) {
	return getPage[models.Publication](ctx, s.client, fmt.Sprintf("/publication/user/%d", userID), opts.values())
}

// ListByTag returns one page of posts carrying the named tag. A 404 here
// means the tag has never been used; callers that want empty-tag semantics
// normalize it themselves.
func (s *PublicationService) ListByTag(ctx context.Context, tag string, opts ListOptions) (Page[models.Publication], error) {
	return getPage[models.Publication](ctx, s.client, "/publication/tag/"+url.PathEscape(tag), opts.values())
}

// Get fetches a single publication.
func (s *PublicationService) Get(ctx context.Context, id int64) (models.Publication, error) {
	var pub models.Publication
	err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/publication/%d", id), nil, nil, &pub)
	return pub, err
}

type publicationCreated struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Create uploads a new publication as a multipart form: a JSON "data" part
// plus up to MaxImagesPerPost "images" parts. The creation response only
// carries an ID, so the full record is fetched afterwards.
func (s *PublicationService) Create(ctx context.Context, data models.CreatePublication, images []FilePart) (models.Publication, error) {
	if len(images) > models.MaxImagesPerPost {
		return models.Publication{}, fmt.Errorf("at most %d images per post", models.MaxImagesPerPost)
	}
	for i := range images {
		if images[i].Field == "" {
			images[i].Field = "images"
		}
	}

	var created publicationCreated
	if err := s.client.doMultipart(ctx, http.MethodPost, "/publication", data, images, &created); err != nil {
		return models.Publication{}, err
	}
	return s.Get(ctx, created.ID)
}

// Update patches mutable publication fields.
func (s *PublicationService) Update(ctx context.Context, id int64, data models.CreatePublication) (models.Publication, error) {
	var pub models.Publication
	err := s.client.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/publication/%d", id), nil, data, &pub)
	return pub, err
}

// Delete removes a publication.
func (s *PublicationService) Delete(ctx context.Context, id int64) error {
	return s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/publication/%d", id), nil, nil, nil)
}

// ToggleHeart likes or unlikes a publication for the current user.
func (s *PublicationService) ToggleHeart(ctx context.Context, id int64) error {
	return s.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/publication/%d/heart", id), nil, nil, nil)
}
