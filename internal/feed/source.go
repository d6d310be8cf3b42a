package feed

import (
	"context"
	"errors"

	"github.com/lienzo/lienzo-go/internal/api"
	"github.com/lienzo/lienzo-go/internal/models"
)

// Source fetches one page of publications for a filter.
type Source interface {
	FetchPage(ctx context.Context, filter Filter, page api.Pageable) (api.Page[models.Publication], error)
}

type apiSource struct {
	publications *api.PublicationService
	users        *api.UserService
}

// NewAPISource returns a Source that resolves each filter to the matching
// listing endpoint.
func NewAPISource(publications *api.PublicationService, users *api.UserService) Source {
	if publications == nil || users == nil {
		panic("feed: NewAPISource requires both services")
	}
	return &apiSource{publications: publications, users: users}
}

func (s *apiSource) FetchPage(ctx context.Context, filter Filter, page api.Pageable) (api.Page[models.Publication], error) {
	opts := api.ListOptions{Pageable: page, Type: filter.Type}
	switch {
	case filter.Tag != "":
		result, err := s.publications.ListByTag(ctx, filter.Tag, opts)
		if errors.Is(err, api.ErrNotFound) {
			// A tag nobody has used yet is a tag with no posts.
			return api.EmptyPage[models.Publication](), nil
		}
		return result, err
	case filter.OnlySaved:
		return s.users.Saved(ctx, opts)
	case filter.OnlyFollowing:
		return s.publications.ListFollowing(ctx, opts)
	case filter.UserID != 0:
		return s.publications.ListByUser(ctx, filter.UserID, opts)
	default:
		return s.publications.List(ctx, opts)
	}
}
