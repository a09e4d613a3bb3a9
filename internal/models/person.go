package models

import "time"

// Person is the identity entity keyed by a canonical phone key.
type Person struct {
	ID         string    `db:"id" json:"id"`
	PhoneKey   string    `db:"phone_key" json:"phone_key"`
	LatestName *string   `db:"latest_name" json:"latest_name,omitempty"`
	LatestOrg  *string   `db:"latest_org" json:"latest_org,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
