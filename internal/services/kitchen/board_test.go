package kitchen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"cafeteria/internal/logger"
	"cafeteria/internal/messaging"
	"cafeteria/internal/models"
)

type fakeSource struct {
	bodies  []string
	results []error
}

func (f *fakeSource) StartConsuming(ctx context.Context, handler messaging.MessageHandler) error {
	for _, b := range f.bodies {
		f.results = append(f.results, handler(ctx, []byte(b)))
	}
	return nil
}

func (f *fakeSource) Close() error { return nil }

func TestBoard_TalliesPlacedOrders(t *testing.T) {
	src := &fakeSource{bodies: []string{
		`{"type":"order_placed","order_id":1,"user_email":"ann@students.sch2.ru","week_start_date":"2024-06-03","total_amount":"351.00","days":2}`,
		`{"type":"order_placed","order_id":2,"user_id":5,"week_start_date":"2024-06-03","total_amount":"100","days":1}`,
		// redelivery
		`{"type":"order_placed","order_id":2,"user_id":5,"week_start_date":"2024-06-03","total_amount":"100","days":1}`,
		`{"type":"payment_uploaded","order_id":1,"user_email":"ann@students.sch2.ru","week_start_date":"2024-06-03"}`,
		`{"type":"order_placed","order_id":3,"week_start_date":"2024-06-10","total_amount":"50","days":1}`,
		`{"type":"something_else","order_id":4,"week_start_date":"2024-06-10"}`,
		`{"order_id":"x"}`,
	}}
	var out bytes.Buffer
	board := NewBoard(src, &out, logger.Discard())

	if err := board.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i, err := range src.results[:6] {
		if err != nil {
			t.Errorf("event %d: %v", i, err)
		}
	}
	if !errors.Is(src.results[6], messaging.ErrMalformed) {
		t.Errorf("malformed event error = %v", src.results[6])
	}

	june3, _ := models.ParseDate("2024-06-03")
	tally := board.Tally(june3)
	if tally.Orders != 2 || tally.Payments != 1 || tally.Revenue.StringFixed(2) != "451.00" {
		t.Fatalf("tally = %+v", tally)
	}
	june10, _ := models.ParseDate("2024-06-10")
	if got := board.Tally(june10); got.Orders != 1 {
		t.Fatalf("second week tally = %+v", got)
	}

	text := out.String()
	if n := strings.Count(text, "\n"); n != 4 {
		t.Fatalf("printed %d lines, want 4:\n%s", n, text)
	}
	for _, want := range []string{
		"New order #1 by ann@students.sch2.ru for the week of 2024-06-03: 2 day(s), 351.00 RUB",
		"by user 5",
		"Week so far: 2 order(s), 451.00 RUB",
		"Payment proof uploaded for order #1",
		"by unknown user",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

// failOnce rejects the first write
type failOnce struct {
	failed bool
	buf    bytes.Buffer
}

func (w *failOnce) Write(p []byte) (int, error) {
	if !w.failed {
		w.failed = true
		return 0, errors.New("terminal gone")
	}
	return w.buf.Write(p)
}

func TestBoard_FailedPrintIsNotRecorded(t *testing.T) {
	out := &failOnce{}
	board := NewBoard(&fakeSource{}, out, logger.Discard())
	body := []byte(`{"type":"order_placed","order_id":9,"week_start_date":"2024-06-03","total_amount":"80","days":1}`)

	if err := board.handleEvent(context.Background(), body); err == nil {
		t.Fatal("print failure not reported")
	}
	june3, _ := models.ParseDate("2024-06-03")
	if got := board.Tally(june3); got.Orders != 0 || !got.Revenue.IsZero() {
		t.Fatalf("tally after failed print = %+v", got)
	}

	// redelivery
	if err := board.handleEvent(context.Background(), body); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if !strings.Contains(out.buf.String(), "New order #9") {
		t.Fatalf("redelivered order not shown: %q", out.buf.String())
	}
	if got := board.Tally(june3); got.Orders != 1 || got.Revenue.StringFixed(2) != "80.00" {
		t.Fatalf("tally after redelivery = %+v", got)
	}
}

func TestBoard_PaymentCountsTowardOrderWeek(t *testing.T) {
	var out bytes.Buffer
	board := NewBoard(&fakeSource{}, &out, logger.Discard())

	week, _ := models.ParseDate("2024-06-03")
	placed := models.Order{ID: 42, Status: models.StatusPending, WeekStartDate: week}
	user := models.User{ID: 1, Email: "ann@students.sch2.ru"}
	for _, ev := range []*models.OrderEvent{
		models.NewOrderEvent(models.EventOrderPlaced, placed, user, 1, "kiosk-1"),
		models.NewOrderEvent(models.EventPaymentUploaded, placed, user, 0, "kiosk-1"),
	} {
		ev.Timestamp = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
		body, _ := json.Marshal(ev)
		if err := board.handleEvent(context.Background(), body); err != nil {
			t.Fatalf("%s: %v", ev.Type, err)
		}
	}

	if got := board.Tally(week); got.Orders != 1 || got.Payments != 1 {
		t.Fatalf("tally for %s = %+v", week, got)
	}
	if got := board.Tally(models.Date{}); got.Payments != 0 {
		t.Fatalf("payment tallied without a week: %+v", got)
	}
	if !strings.Contains(out.String(), "order #42 by ann@students.sch2.ru (week of 2024-06-03)") {
		t.Fatalf("output = %q", out.String())
	}
}
