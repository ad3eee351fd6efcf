package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// BusinessEventType represents the type of business event
type BusinessEventType string

const (
	BusinessEventTypeStatusChange  BusinessEventType = "status_change"
	BusinessEventTypeRatingUpdate  BusinessEventType = "rating_update"
	BusinessEventTypeProfileUpdate BusinessEventType = "profile_update"
	BusinessEventTypeDeleted       BusinessEventType = "deleted"
)

// BusinessEvent represents an update event for a business listing,
// broadcast for cache invalidation and live admin views
type BusinessEvent struct {
	ID            string                 `json:"id"`
	BusinessID    string                 `json:"business_id"`
	EventType     BusinessEventType      `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewBusinessEvent creates a new business event
func NewBusinessEvent(businessID string, eventType BusinessEventType, changedFields map[string]interface{}) *BusinessEvent {
	return &BusinessEvent{
		ID:            generateEventID(),
		BusinessID:    businessID,
		EventType:     eventType,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
	}
}

func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
