package api

import (
	"context"
	"net/http"

	"github.com/lienzo/lienzo-go/internal/models"
)

// ReportService wraps the content-reporting endpoint.
type ReportService struct {
	client *Client
}

// NewReportService constructs a ReportService over the shared client.
func NewReportService(client *Client) *ReportService {
	return &ReportService{client: client}
}

// Create flags a publication to the moderation team.
func (s *ReportService) Create(ctx context.Context, data models.CreateReport) error {
	return s.client.doJSON(ctx, http.MethodPost, "/report", nil, data, nil)
}
