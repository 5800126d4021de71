package schedule

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ScheduledEmail is one outgoing advisory email. Timestamps are stored
// UTC. Once the record leaves pending it is immutable except for the
// open/click bookkeeping and dispatcher transitions.
type ScheduledEmail struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AdvisoryID    string             `json:"advisory_id" bson:"advisory_id"`
	To            []string           `json:"to" bson:"to"`
	Cc            []string           `json:"cc,omitempty" bson:"cc,omitempty"`
	Bcc           []string           `json:"bcc,omitempty" bson:"bcc,omitempty"`
	Subject       string             `json:"subject" bson:"subject"`
	CustomMessage string             `json:"custom_message,omitempty" bson:"custom_message,omitempty"`
	ScheduledAt   time.Time          `json:"scheduled_at" bson:"scheduled_at"`
	Status        Status             `json:"status" bson:"status"`

	// BulkMode means recipients are in bcc and must not see each other;
	// To holds the neutral sender-controlled address.
	BulkMode bool `json:"bulk_mode,omitempty" bson:"bulk_mode,omitempty"`

	CreatedBy    string     `json:"created_by" bson:"created_by"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
	SentAt       *time.Time `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty" bson:"error_message,omitempty"`
	RetryCount   int        `json:"retry_count" bson:"retry_count"`

	TrackingID string     `json:"tracking_id,omitempty" bson:"tracking_id,omitempty"`
	IsOpened   bool       `json:"is_opened" bson:"is_opened"`
	OpenedAt   *time.Time `json:"opened_at,omitempty" bson:"opened_at,omitempty"`
	OpenCount  int        `json:"open_count" bson:"open_count"`
	ClickCount int        `json:"click_count" bson:"click_count"`
}

// DispatchDetail is the per-record outcome of a dispatch attempt.
type DispatchDetail struct {
	EmailID    string `json:"email_id"`
	Status     Status `json:"status"`
	Recipients int    `json:"recipients"`
	Error      string `json:"error,omitempty"`
}

// DispatchSummary aggregates one processor batch.
type DispatchSummary struct {
	Attempted int              `json:"attempted"`
	Sent      int              `json:"sent"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Details   []DispatchDetail `json:"details"`
}
