package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lienzo/lienzo-go/internal/models"
)

// AdminService wraps the moderation queues. Every call requires an
// admin-role token; the server enforces that, not the client.
type AdminService struct {
	client *Client
}

// NewAdminService constructs an AdminService over the shared client.
func NewAdminService(client *Client) *AdminService {
	return &AdminService{client: client}
}

// Reports returns one page of moderation reports in the given status.
func (s *AdminService) Reports(ctx context.Context, status string, page Pageable) (Page[models.Report], error) {
	extra := url.Values{}
	extra.Set("status", status)
	return getPage[models.Report](ctx, s.client, "/admin/moderation/reports", page.Values(extra))
}

// ResolveReport closes a report with a decision and reviewer notes.
func (s *AdminService) ResolveReport(ctx context.Context, id int64, status, notes string) error {
	return s.client.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/moderation/reports/%d/resolve", id), nil,
		map[string]string{"status": status, "notes": notes}, nil)
}

// Appeals returns one page of pending appeals.
func (s *AdminService) Appeals(ctx context.Context, page Pageable) (Page[models.Appeal], error) {
	return getPage[models.Appeal](ctx, s.client, "/appeal/admin/list", page.Values(nil))
}

// ResolveAppeal closes an appeal with a decision and reviewer notes.
func (s *AdminService) ResolveAppeal(ctx context.Context, id int64, status, notes string) error {
	return s.client.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/appeal/admin/%d/resolve", id), nil,
		map[string]string{"status": status, "adminNotes": notes}, nil)
}

// FailedPlaceTasks returns one page of stuck place-resolution jobs.
func (s *AdminService) FailedPlaceTasks(ctx context.Context, page Pageable) (Page[models.FailedTask], error) {
	return getPage[models.FailedTask](ctx, s.client, "/admin/moderation/tasks/place/failed", page.Values(nil))
}

// RetryPlaceTask requeues a failed place-resolution job.
func (s *AdminService) RetryPlaceTask(ctx context.Context, taskID int64) error {
	return s.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/admin/moderation/tasks/place/%d/retry", taskID), nil, nil, nil)
}

// DismissPlaceTask drops a failed place-resolution job.
func (s *AdminService) DismissPlaceTask(ctx context.Context, taskID int64) error {
	return s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/admin/moderation/tasks/place/%d", taskID), nil, nil, nil)
}

// FailedAITasks returns one page of stuck AI-screening jobs.
func (s *AdminService) FailedAITasks(ctx context.Context, page Pageable) (Page[models.FailedTask], error) {
	return getPage[models.FailedTask](ctx, s.client, "/admin/moderation/tasks/ai/failed", page.Values(nil))
}

// RetryAITask requeues a failed AI-screening job.
func (s *AdminService) RetryAITask(ctx context.Context, taskID int64) error {
	return s.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/admin/moderation/tasks/ai/%d/retry", taskID), nil, nil, nil)
}

// DismissAITask drops a failed AI-screening job.
func (s *AdminService) DismissAITask(ctx context.Context, taskID int64) error {
	return s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/admin/moderation/tasks/ai/%d", taskID), nil, nil, nil)
}
