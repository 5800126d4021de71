package client

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a named recipient group: an organization with its
// configured notification address lists.
type Client struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ClientID    string             `json:"client_id" bson:"client_id"`
	Name        string             `json:"name" bson:"name"`
	Emails      []string           `json:"emails" bson:"emails"`
	CcEmails    []string           `json:"cc_emails,omitempty" bson:"cc_emails,omitempty"`
	BccEmails   []string           `json:"bcc_emails,omitempty" bson:"bcc_emails,omitempty"`
	FwIndex     string             `json:"fw_index" bson:"fw_index"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
