package amqp

import (
	"encoding/json"
	"time"
)

// AlertNotificationMessage carries a newly raised alert to external
// notification consumers. Delivery is best-effort: the alert row in the
// store is the source of truth.
type AlertNotificationMessage struct {
	AlertID   int64     `json:"alert_id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAlertNotificationMessage(alertID, userID int64, kind, message string) *AlertNotificationMessage {
	return &AlertNotificationMessage{
		AlertID:   alertID,
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AlertNotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertNotificationMessageFromJSON creates a message from JSON bytes.
func AlertNotificationMessageFromJSON(data []byte) (*AlertNotificationMessage, error) {
	var msg AlertNotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
