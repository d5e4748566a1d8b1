package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"cafeteria/internal/models"
)

// CreateOrder submits an order; the returned total is authoritative
func (c *Client) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/orders", body: req}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Orders lists the caller's orders, newest first
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/orders"}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches one of the caller's orders
func (c *Client) Order(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/orders/%d", id)}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PayOrder uploads a payment proof as the multipart field "file"
func (c *Client) PayOrder(ctx context.Context, id int, filename string, proof io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, proof); err != nil {
		return fmt.Errorf("failed to read payment proof: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}

	return c.doJSON(ctx, request{
		method:      http.MethodPost,
		path:        fmt.Sprintf("/orders/%d/pay", id),
		raw:         &buf,
		contentType: mw.FormDataContentType(),
	}, nil)
}

// Receipt downloads the uploaded payment proof of an order into w
func (c *Client) Receipt(ctx context.Context, id int, w io.Writer) (Download, error) {
	return c.doDownload(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/orders/%d/receipt", id)}, w)
}
