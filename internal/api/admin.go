package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"cafeteria/internal/models"
)

// UpdateOrderStatus sets an order's status (admin only)
func (c *Client) UpdateOrderStatus(ctx context.Context, id int, status models.OrderStatus) error {
	return c.doJSON(ctx, request{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/admin/orders/%d/status", id),
		query:  url.Values{"status": {string(status)}},
	}, nil)
}

// SummaryReport returns revenue per dish for paid orders on date
func (c *Client) SummaryReport(ctx context.Context, date models.Date) (*models.SummaryReport, error) {
	var report models.SummaryReport
	req := request{
		method: http.MethodGet,
		path:   "/admin/reports/summary",
		query:  url.Values{"date_query": {date.String()}},
	}
	if err := c.doJSON(ctx, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// TableReport downloads the table-setting document for date into w
func (c *Client) TableReport(ctx context.Context, date models.Date, w io.Writer) (Download, error) {
	return c.doDownload(ctx, request{
		method: http.MethodGet,
		path:   "/admin/reports/docx",
		query:  url.Values{"date_query": {date.String()}},
	}, w)
}

// ExportModuleMenu downloads the module menu as CSV into w
func (c *Client) ExportModuleMenu(ctx context.Context, w io.Writer) (Download, error) {
	return c.doDownload(ctx, request{method: http.MethodGet, path: "/module-menu/export"}, w)
}

type moduleMenuRequest struct {
	Schedule      []models.ScheduleEntry `json:"schedule"`
	WeekStartDate models.Date            `json:"week_start_date"`
}

// SetModuleMenu replaces the module menu for the week
func (c *Client) SetModuleMenu(ctx context.Context, weekStart models.Date, schedule models.WeekSchedule) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/module-menu",
		body:   moduleMenuRequest{Schedule: schedule.Entries(), WeekStartDate: weekStart},
	}, nil)
}
