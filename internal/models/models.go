package models

import "time"

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PushToken    *string   `json:"push_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RelationshipRecord holds one user's half of the social graph: confirmed
// friends plus outstanding requests in both directions. Entries are created
// lazily on first reference and never deleted.
type RelationshipRecord struct {
	Friends  []string `json:"friends"`
	Sent     []string `json:"sent"`
	Received []string `json:"received"`
}

// RelationshipStatus is the state of an ordered user pair
type RelationshipStatus string

const (
	StatusFriends  RelationshipStatus = "friends"
	StatusSent     RelationshipStatus = "sent"
	StatusReceived RelationshipStatus = "received"
	StatusNone     RelationshipStatus = "none"
)

// PhotoType classifies how a photo entered the journal. Assigned at save
// time from the capture context and immutable afterwards.
type PhotoType string

const (
	PhotoTypeSelfie   PhotoType = "selfie"
	PhotoTypeCaptured PhotoType = "captured"
	PhotoTypeImported PhotoType = "imported"
	PhotoTypeOther    PhotoType = "other"
)

// Coordinates is a GPS position attached to a photo
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo represents one journal entry. Labels start as whatever was known at
// save time and are extended exactly once more by the enrichment pipeline.
type Photo struct {
	ID        string      `json:"id"`
	OwnerID   string      `json:"owner_id"`
	URI       string      `json:"uri"`
	PublicID  string      `json:"public_id,omitempty"`
	Coords    Coordinates `json:"coords"`
	Note      string      `json:"note"`
	Labels    []string    `json:"labels"`
	Type      PhotoType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Year      int         `json:"year"`
	Month     int         `json:"month"`
	Day       int         `json:"day"`
}
