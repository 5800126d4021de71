package audit

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Action string

const (
	ActionEmailScheduled Action = "email_scheduled"
	ActionEmailUpdated   Action = "email_updated"
	ActionEmailCancelled Action = "email_cancelled"
	ActionEmailSent      Action = "email_sent"
	ActionEmailDeleted   Action = "email_deleted"
	ActionLogin          Action = "login"
)

type AuditLog struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Actor      string             `json:"actor" bson:"actor"`
	Action     Action             `json:"action" bson:"action"`
	EntityType string             `json:"entity_type" bson:"entity_type"`
	EntityID   string             `json:"entity_id" bson:"entity_id"`
	Detail     string             `json:"detail,omitempty" bson:"detail,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
