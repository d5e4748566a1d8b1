package validation

import (
	"errors"
	"testing"
	"time"

	"cafeteria/internal/models"
)

func monday() models.Date {
	return models.NewDate(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
}

func TestValidateOrderRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.OrderRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req: &models.OrderRequest{
				WeekStartDate: monday(),
				Days: []models.DayOrder{
					{DayOfWeek: 0, Items: []models.OrderItemRequest{{DishID: 1, Quantity: 1}}},
				},
			},
			wantErr: false,
		},
		{
			name: "missing week start",
			req: &models.OrderRequest{
				Days: []models.DayOrder{
					{DayOfWeek: 0, Items: []models.OrderItemRequest{{DishID: 1, Quantity: 1}}},
				},
			},
			wantErr: true,
		},
		{
			name: "week start on wednesday",
			req: &models.OrderRequest{
				WeekStartDate: models.NewDate(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)),
				Days: []models.DayOrder{
					{DayOfWeek: 0, Items: []models.OrderItemRequest{{DishID: 1, Quantity: 1}}},
				},
			},
			wantErr: true,
		},
		{
			name: "day out of range",
			req: &models.OrderRequest{
				WeekStartDate: monday(),
				Days: []models.DayOrder{
					{DayOfWeek: 7, Items: []models.OrderItemRequest{{DishID: 1, Quantity: 1}}},
				},
			},
			wantErr: true,
		},
		{
			name: "empty day",
			req: &models.OrderRequest{
				WeekStartDate: monday(),
				Days:          []models.DayOrder{{DayOfWeek: 1}},
			},
			wantErr: true,
		},
		{
			name: "zero quantity",
			req: &models.OrderRequest{
				WeekStartDate: monday(),
				Days: []models.DayOrder{
					{DayOfWeek: 1, Items: []models.OrderItemRequest{{DishID: 1, Quantity: 0}}},
				},
			},
			wantErr: true,
		},
		{
			name: "duplicate day",
			req: &models.OrderRequest{
				WeekStartDate: monday(),
				Days: []models.DayOrder{
					{DayOfWeek: 1, Items: []models.OrderItemRequest{{DishID: 1, Quantity: 1}}},
					{DayOfWeek: 1, Items: []models.OrderItemRequest{{DishID: 2, Quantity: 1}}},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrderRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("error %v is not a ValidationError", err)
			}
		})
	}
}

func TestValidateOrderRequest_EmptySelection(t *testing.T) {
	err := ValidateOrderRequest(&models.OrderRequest{WeekStartDate: monday()})
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("error = %v, want ErrEmptySelection", err)
	}
}

func TestValidateOrderRequest_EmptyWinsOverWeekStart(t *testing.T) {
	tests := []struct {
		name string
		week models.Date
	}{
		{"zero week start", models.Date{}},
		{"wednesday", models.NewDate(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderRequest(&models.OrderRequest{WeekStartDate: tt.week})
			if !errors.Is(err, ErrEmptySelection) {
				t.Fatalf("error = %v, want ErrEmptySelection", err)
			}
		})
	}
}
