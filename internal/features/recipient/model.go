package recipient

import (
	"fmt"
	"strings"
)

type GroupType string

const (
	GroupClient GroupType = "client"
	GroupCustom GroupType = "custom"
	GroupBulk   GroupType = "bulk"
)

// Spec is a recipient specification as submitted by the UI: named
// client references, literal address lists, and/or a bulk-upload list.
type Spec struct {
	ClientIDs  []string `json:"client_ids"`
	To         []string `json:"to"`
	Cc         []string `json:"cc"`
	Bcc        []string `json:"bcc"`
	BulkEmails []string `json:"bulk_emails"`
}

// Group is a resolved, labelled address group. Display only; it is
// never persisted.
type Group struct {
	Type   GroupType `json:"type"`
	Label  string    `json:"label"`
	Emails []string  `json:"emails"`
}

// Resolved is the validated, deduplicated output of a resolve run.
// To/Cc/Bcc always carry the real delivery addresses; DisplayTo
// carries the role-masked strings shown in the UI.
type Resolved struct {
	To  []string `json:"to"`
	Cc  []string `json:"cc"`
	Bcc []string `json:"bcc"`

	DisplayTo []string `json:"display_to"`
	Groups    []Group  `json:"groups"`

	// BulkMode forces privacy-preserving delivery: recipients are moved
	// to bcc so they cannot see each other's addresses.
	BulkMode bool `json:"bulk_mode"`
}

// InvalidAddressError aggregates every syntactically invalid address
// in a spec; resolution fails atomically, nothing is dropped silently.
type InvalidAddressError struct {
	Invalid []string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid email addresses: %s", strings.Join(e.Invalid, ", "))
}
