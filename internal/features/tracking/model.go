package tracking

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventOpen  EventType = "open"
	EventClick EventType = "click"
)

// EmailTracking is the per-send engagement record, created when the
// dispatcher hands an email to the transport. One record per tracking
// id.
type EmailTracking struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TrackingID string             `json:"tracking_id" bson:"tracking_id"`
	EmailID    string             `json:"email_id" bson:"email_id"`
	Subject    string             `json:"subject" bson:"subject"`
	Recipients int                `json:"recipients" bson:"recipients"`
	SentAt     time.Time          `json:"sent_at" bson:"sent_at"`

	FirstOpenedAt *time.Time `json:"first_opened_at,omitempty" bson:"first_opened_at,omitempty"`
	LastOpenedAt  *time.Time `json:"last_opened_at,omitempty" bson:"last_opened_at,omitempty"`
	OpenCount     int        `json:"open_count" bson:"open_count"`
	ClickCount    int        `json:"click_count" bson:"click_count"`
}

// TrackingEvent is one raw open or click hit, append-only.
type TrackingEvent struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TrackingID string             `json:"tracking_id" bson:"tracking_id"`
	Type       EventType          `json:"type" bson:"type"`
	LinkID     string             `json:"link_id,omitempty" bson:"link_id,omitempty"`
	TargetURL  string             `json:"target_url,omitempty" bson:"target_url,omitempty"`
	IP         string             `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent  string             `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// TrackingStats aggregates engagement across all tracked sends.
type TrackingStats struct {
	TotalSent   int64 `json:"total_sent" bson:"total_sent"`
	TotalOpened int64 `json:"total_opened" bson:"total_opened"`
	TotalOpens  int64 `json:"total_opens" bson:"total_opens"`
	TotalClicks int64 `json:"total_clicks" bson:"total_clicks"`
}
