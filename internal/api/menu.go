package api

import (
	"context"
	"net/http"
	"net/url"

	"cafeteria/internal/models"
	"cafeteria/internal/services/menu"
)

// Menu fetches the global dish catalog; no login is needed
func (c *Client) Menu(ctx context.Context) (models.Catalog, error) {
	body, err := c.doRaw(ctx, request{method: http.MethodGet, path: "/menu", public: true})
	if err != nil {
		return nil, err
	}
	return menu.DecodeCatalog(body)
}

// ModuleMenu fetches the week schedule. A zero weekStart asks for the
// backend's current module menu.
func (c *Client) ModuleMenu(ctx context.Context, weekStart models.Date) (models.WeekSchedule, error) {
	req := request{method: http.MethodGet, path: "/module-menu", public: true}
	if !weekStart.IsZero() {
		req.query = url.Values{"week_start_date": {weekStart.String()}}
	}

	body, err := c.doRaw(ctx, req)
	if err != nil {
		return models.WeekSchedule{}, err
	}
	return menu.DecodeSchedule(body)
}
