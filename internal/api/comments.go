package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lienzo/lienzo-go/internal/models"
)

// CommentService wraps the per-publication comment endpoints.
type CommentService struct {
	client *Client
}

// NewCommentService constructs a CommentService over the shared client.
func NewCommentService(client *Client) *CommentService {
	return &CommentService{client: client}
}

// List returns the full comment tree for a publication.
func (s *CommentService) List(ctx context.Context, publicationID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/publication/%d/comment", publicationID), nil, nil, &comments)
	return comments, err
}

// Create posts a comment, or a reply when data.ParentID is set.
func (s *CommentService) Create(ctx context.Context, publicationID int64, data models.CreateComment) (models.Comment, error) {
	var comment models.Comment
	err := s.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/publication/%d/comment", publicationID), nil, data, &comment)
	return comment, err
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, publicationID, commentID int64) error {
	return s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/publication/%d/comment/%d", publicationID, commentID), nil, nil, nil)
}
