package validation

import (
	"errors"
	"fmt"
	"time"

	"cafeteria/internal/models"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrEmptySelection is returned when an order would contain no items
var ErrEmptySelection = ValidationError{
	Field:   "days",
	Message: "selection is empty",
}

// IsValidation reports whether err is a client-side validation failure
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

func ValidateWeekStart(weekStart time.Time) error {
	if weekStart.IsZero() {
		return ValidationError{
			Field:   "week_start_date",
			Message: "week start date is required",
		}
	}
	if weekStart.Weekday() != time.Monday {
		return ValidationError{
			Field:   "week_start_date",
			Message: fmt.Sprintf("%s is a %s, week must start on Monday", weekStart.Format(models.DateLayout), weekStart.Weekday()),
		}
	}
	return nil
}

// ValidateOrderRequest reports an empty selection before any other problem
func ValidateOrderRequest(req *models.OrderRequest) error {
	if len(req.Days) == 0 {
		return ErrEmptySelection
	}

	if err := ValidateWeekStart(req.WeekStartDate.Time); err != nil {
		return err
	}

	if err := validateDays(req.Days); err != nil {
		return err
	}

	return nil
}

func validateDays(days []models.DayOrder) error {
	if len(days) == 0 {
		return ErrEmptySelection
	}

	seen := make(map[int]bool, len(days))
	for i, day := range days {
		if !models.ValidDay(day.DayOfWeek) {
			return ValidationError{
				Field:   fmt.Sprintf("days[%d].day_of_week", i),
				Message: "day of week must be between 0 and 6",
			}
		}
		if seen[day.DayOfWeek] {
			return ValidationError{
				Field:   fmt.Sprintf("days[%d].day_of_week", i),
				Message: "day appears more than once",
			}
		}
		seen[day.DayOfWeek] = true

		if len(day.Items) == 0 {
			return ValidationError{
				Field:   fmt.Sprintf("days[%d].items", i),
				Message: "items cannot be empty",
			}
		}
		for j, item := range day.Items {
			if err := validateItem(item, i, j); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateItem(item models.OrderItemRequest, day, index int) error {
	prefix := fmt.Sprintf("days[%d].items[%d]", day, index)

	if item.DishID <= 0 {
		return ValidationError{
			Field:   prefix + ".dish_id",
			Message: "dish id must be positive",
		}
	}

	if item.Quantity <= 0 {
		return ValidationError{
			Field:   prefix + ".quantity",
			Message: "item quantity must be greater than 0",
		}
	}
	return nil
}
