package kitchen

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shopspring/decimal"

	"cafeteria/internal/logger"
	"cafeteria/internal/messaging"
	"cafeteria/internal/models"
)

// Source delivers message bodies to a handler until ctx is done
type Source interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// WeekTally counts orders placed for one week since the board started
type WeekTally struct {
	Orders   int
	Payments int
	Revenue  decimal.Decimal
}

// Board prints order events for the kitchen as they arrive and keeps a
// per-week tally
type Board struct {
	source Source
	logger *logger.Logger

	mu      sync.Mutex
	out     io.Writer
	tallies map[string]*WeekTally
	seen    map[int]bool
}

func NewBoard(source Source, out io.Writer, log *logger.Logger) *Board {
	return &Board{
		source:  source,
		logger:  log,
		out:     out,
		tallies: make(map[string]*WeekTally),
		seen:    make(map[int]bool),
	}
}

// Start consumes until ctx is cancelled, then closes the source
func (b *Board) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	b.logger.Info("service_started", "Kitchen board started", requestID, nil)

	err := b.source.StartConsuming(ctx, b.handleEvent)

	b.logger.Info("graceful_shutdown", "Stopping kitchen board", requestID, nil)
	if closeErr := b.source.Close(); closeErr != nil {
		b.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("kitchen board consumer failed: %w", err)
	}
	return nil
}

// Tally returns a copy of the tally for weekStart
func (b *Board) Tally(weekStart models.Date) WeekTally {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.tallies[weekStart.String()]; ok {
		return *t
	}
	return WeekTally{}
}

func (b *Board) handleEvent(_ context.Context, body []byte) error {
	var event models.OrderEvent
	if err := messaging.ParseMessage(body, &event); err != nil {
		return err
	}
	if event.OrderID <= 0 {
		return fmt.Errorf("%w: order_id is required", messaging.ErrMalformed)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	week := event.WeekStartDate.String()
	current := b.tallies[week]
	if current == nil {
		current = &WeekTally{}
	}
	next := *current

	var line string
	stamp := event.Timestamp.Local().Format("15:04:05")
	switch event.Type {
	case models.EventOrderPlaced:
		// redelivered events are shown once
		if b.seen[event.OrderID] {
			return nil
		}
		next.Orders++
		next.Revenue = next.Revenue.Add(event.TotalAmount)
		line = fmt.Sprintf("[%s] New order #%d by %s for the week of %s: %d day(s), %s RUB. Week so far: %d order(s), %s RUB",
			stamp, event.OrderID, who(event), week, event.Days,
			event.TotalAmount.StringFixed(2), next.Orders, next.Revenue.StringFixed(2))
	case models.EventPaymentUploaded:
		next.Payments++
		line = fmt.Sprintf("[%s] Payment proof uploaded for order #%d by %s (week of %s)",
			stamp, event.OrderID, who(event), week)
	default:
		b.logger.Debug("event_ignored", "Ignoring unknown order event", "", map[string]interface{}{
			"type":     event.Type,
			"order_id": event.OrderID,
		})
		return nil
	}

	// a failed print is requeued, so nothing is recorded until it succeeds
	if _, err := fmt.Fprintln(b.out, line); err != nil {
		return fmt.Errorf("failed to print order event: %w", err)
	}
	b.tallies[week] = &next
	if event.Type == models.EventOrderPlaced {
		b.seen[event.OrderID] = true
	}

	b.logger.Info("order_event_displayed", "Order event displayed", "", map[string]interface{}{
		"type":     event.Type,
		"order_id": event.OrderID,
		"terminal": event.Terminal,
	})
	return nil
}

func who(e models.OrderEvent) string {
	switch {
	case e.UserEmail != "":
		return e.UserEmail
	case e.UserID > 0:
		return fmt.Sprintf("user %d", e.UserID)
	default:
		return "unknown user"
	}
}
