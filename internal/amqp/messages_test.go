package amqp

import (
	"testing"
)

func TestNewAlertNotificationMessage(t *testing.T) {
	msg := NewAlertNotificationMessage(7, 3, "BUDGET_80_PERCENT",
		"Budget warning! FOOD category has reached 82.0% (₹820.00 / ₹1000.00)")

	if msg.AlertID != 7 || msg.UserID != 3 {
		t.Errorf("unexpected ids: alert=%d user=%d", msg.AlertID, msg.UserID)
	}
	if msg.Kind != "BUDGET_80_PERCENT" {
		t.Errorf("unexpected kind: %s", msg.Kind)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestAlertNotificationMessageRoundTrip(t *testing.T) {
	original := NewAlertNotificationMessage(7, 3, "OVERALL_BALANCE_LIMIT",
		"Overall balance limit exceeded! Current balance: ₹52000.00, Limit: ₹50000.00")

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	decoded, err := AlertNotificationMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if decoded.AlertID != original.AlertID ||
		decoded.UserID != original.UserID ||
		decoded.Kind != original.Kind ||
		decoded.Message != original.Message {
		t.Errorf("round trip mismatch: %+v vs %+v", decoded, original)
	}
}

func TestAlertNotificationMessageFromInvalidJSON(t *testing.T) {
	if _, err := AlertNotificationMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
