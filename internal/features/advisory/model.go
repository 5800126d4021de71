package advisory

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IOC struct {
	Type        string `json:"type" bson:"type"` // IP, Hash, URL, Domain, Email
	Value       string `json:"value" bson:"value"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Advisory is the snapshot the email composer renders from. Most
// fields are optional; the composer omits absent sections.
type Advisory struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title            string             `json:"title" bson:"title"`
	Severity         string             `json:"severity,omitempty" bson:"severity,omitempty"`
	TLP              string             `json:"tlp,omitempty" bson:"tlp,omitempty"`
	ExecutiveSummary string             `json:"executive_summary,omitempty" bson:"executive_summary,omitempty"`
	Description      string             `json:"description,omitempty" bson:"description,omitempty"`
	CveIDs           []string           `json:"cve_ids,omitempty" bson:"cve_ids,omitempty"`
	IOCs             []IOC              `json:"iocs,omitempty" bson:"iocs,omitempty"`
	Recommendations  []string           `json:"recommendations,omitempty" bson:"recommendations,omitempty"`
	PatchDetails     []string           `json:"patch_details,omitempty" bson:"patch_details,omitempty"`
	References       []string           `json:"references,omitempty" bson:"references,omitempty"`
	AffectedProducts []string           `json:"affected_products,omitempty" bson:"affected_products,omitempty"`
	TargetSectors    []string           `json:"target_sectors,omitempty" bson:"target_sectors,omitempty"`
	ThreatActor      string             `json:"threat_actor,omitempty" bson:"threat_actor,omitempty"`
	PublishedDate    *time.Time         `json:"published_date,omitempty" bson:"published_date,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}
