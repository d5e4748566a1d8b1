package notification

import (
	"context"
	"fmt"
	"io"
	"sync"

	"cafeteria/internal/logger"
	"cafeteria/internal/messaging"
	"cafeteria/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// Source delivers message bodies to a handler until ctx is done
type Source interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints order status notifications for cook and admin terminals
type Subscriber struct {
	source Source
	logger *logger.Logger

	mu  sync.Mutex
	out io.Writer
}

func NewSubscriber(source Source, out io.Writer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		source: source,
		logger: log,
		out:    out,
	}
}

// Start consumes until ctx is cancelled, then closes the source
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.source.StartConsuming(ctx, s.handleNotification)

	s.logger.Info("graceful_shutdown", "Stopping notification subscriber", requestID, nil)
	if closeErr := s.source.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("notification consumer failed: %w", err)
	}
	return nil
}

func (s *Subscriber) handleNotification(_ context.Context, body []byte) error {
	var update models.StatusUpdateMessage
	if err := messaging.ParseMessage(body, &update); err != nil {
		return err
	}
	if update.OrderID <= 0 || update.NewStatus == "" {
		return fmt.Errorf("%w: order_id and new_status are required", messaging.ErrMalformed)
	}

	s.mu.Lock()
	_, err := fmt.Fprintln(s.out, FormatNotification(&update))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to print notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", "", map[string]interface{}{
		"order_id":   update.OrderID,
		"old_status": update.OldStatus,
		"new_status": update.NewStatus,
		"changed_by": update.ChangedBy,
	})
	return nil
}

// FormatNotification renders a status change as one console line
func FormatNotification(update *models.StatusUpdateMessage) string {
	timestamp := update.Timestamp.Local().Format(timestampLayout)
	by := update.ChangedBy
	if by == "" {
		by = "the cafeteria"
	}

	switch update.NewStatus {
	case models.StatusOnReview:
		return fmt.Sprintf("[%s] Order #%d: payment proof uploaded, waiting for review.", timestamp, update.OrderID)
	case models.StatusPaid:
		return fmt.Sprintf("[%s] Order #%d: payment confirmed by %s.", timestamp, update.OrderID, by)
	case models.StatusCompleted:
		return fmt.Sprintf("[%s] Order #%d has been completed.", timestamp, update.OrderID)
	case models.StatusCancelled:
		return fmt.Sprintf("[%s] Order #%d has been cancelled by %s.", timestamp, update.OrderID, by)
	default:
		if update.OldStatus == "" {
			return fmt.Sprintf("[%s] Order #%d is now '%s'.", timestamp, update.OrderID, update.NewStatus)
		}
		return fmt.Sprintf("[%s] Order #%d status changed from '%s' to '%s' by %s.",
			timestamp, update.OrderID, update.OldStatus, update.NewStatus, by)
	}
}
