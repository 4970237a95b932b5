package kafka

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Notification kinds carried by NotificationEvent.Type.
const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingExpired   = "booking_expired"
	EventWaitlistJoined   = "waitlist_joined"
	EventWaitlistPromoted = "waitlist_promoted"
)

type NotificationEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Message   string    `json:"message"`
	BookingID int64     `json:"booking_id,omitempty"`
	PackageID int64     `json:"package_id"`
	CreatedAt time.Time `json:"created_at"`
}

func DecodeNotification(msg kafka.Message) (NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("decode notification at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
