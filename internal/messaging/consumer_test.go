package messaging

import (
	"errors"
	"testing"

	"cafeteria/internal/models"
)

func TestParseMessage(t *testing.T) {
	var msg models.StatusUpdateMessage
	if err := ParseMessage([]byte(`{"order_id":4,"new_status":"paid","changed_by":"admin"}`), &msg); err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.OrderID != 4 || msg.NewStatus != models.StatusPaid {
		t.Fatalf("msg = %+v", msg)
	}

	err := ParseMessage([]byte(`{"order_id":`), &msg)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
}
