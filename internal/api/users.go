package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lienzo/lienzo-go/internal/models"
)

// UserService wraps the profile and follow-graph endpoints.
type UserService struct {
	client *Client
}

// NewUserService constructs a UserService over the shared client.
func NewUserService(client *Client) *UserService {
	return &UserService{client: client}
}

// ByUsername fetches the public profile behind a username.
func (s *UserService) ByUsername(ctx context.Context, username string) (models.PublicUser, error) {
	var user models.PublicUser
	err := s.client.doJSON(ctx, http.MethodGet, "/user/"+url.PathEscape(username), nil, nil, &user)
	return user, err
}

// UserByID fetches the full profile, including counters and private fields
// when the caller is the owner.
func (s *UserService) UserByID(ctx context.Context, id int64) (models.UserDetails, error) {
	var user models.UserDetails
	err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/user/i/%d", id), nil, nil, &user)
	return user, err
}

// Update patches the profile, optionally replacing the watermark image.
func (s *UserService) Update(ctx context.Context, id int64, data models.UpdateUser, watermark *FilePart) (models.UserDetails, error) {
	var files []FilePart
	if watermark != nil {
		part := *watermark
		part.Field = "watermark"
		files = append(files, part)
	}

	var user models.UserDetails
	err := s.client.doMultipart(ctx, http.MethodPatch, fmt.Sprintf("/user/%d", id), data, files, &user)
	return user, err
}

// UploadAvatar replaces the profile picture and returns the updated profile.
func (s *UserService) UploadAvatar(ctx context.Context, image FilePart) (models.UserDetails, error) {
	image.Field = "image"

	var user models.UserDetails
	err := s.client.doMultipart(ctx, http.MethodPost, "/user/avatar", nil, []FilePart{image}, &user)
	return user, err
}

// ToggleFollow follows or unfollows the target user.
func (s *UserService) ToggleFollow(ctx context.Context, userID int64) error {
	return s.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/user/%d/follow", userID), nil, nil, nil)
}

// Following returns one page of accounts the user follows.
func (s *UserService) Following(ctx context.Context, userID int64, page Pageable) (Page[models.PublicUser], error) {
	return getPage[models.PublicUser](ctx, s.client, fmt.Sprintf("/user/%d/following", userID), page.Values(nil))
}

// Followers returns one page of the user's followers.
func (s *UserService) Followers(ctx context.Context, userID int64, page Pageable) (Page[models.PublicUser], error) {
	return getPage[models.PublicUser](ctx, s.client, fmt.Sprintf("/user/%d/followers", userID), page.Values(nil))
}

// IsFollowing reports whether the caller follows the target, resolved
// client-side from the first page of the follow list. Lookup failures read
// as "not following" rather than surfacing an error.
func (s *UserService) IsFollowing(ctx context.Context, myUserID, targetUserID int64) bool {
	page, err := s.Following(ctx, myUserID, Pageable{Page: 0, Size: 100})
	if err != nil {
		return false
	}
	for _, user := range page.Content {
		if user.UserID == targetUserID {
			return true
		}
	}
	return false
}

// ToggleSave saves or unsaves a publication for later.
func (s *UserService) ToggleSave(ctx context.Context, publicationID int64) error {
	return s.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/user/save/%d", publicationID), nil, nil, nil)
}

// Saved returns one page of the caller's saved publications.
func (s *UserService) Saved(ctx context.Context, opts ListOptions) (Page[models.Publication], error) {
	return getPage[models.Publication](ctx, s.client, "/user/saved", opts.values())
}

// SwitchRole toggles the caller between the viewer and creator roles.
func (s *UserService) SwitchRole(ctx context.Context) error {
	return s.client.doJSON(ctx, http.MethodPatch, "/user/switch-role", nil, nil, nil)
}
