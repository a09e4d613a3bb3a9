package models

import "time"

// Enrollment is a frozen snapshot of one roster row for one session.
type Enrollment struct {
	ID             string    `db:"id" json:"id"`
	SessionID      string    `db:"session_id" json:"session_id"`
	PersonID       string    `db:"person_id" json:"person_id"`
	EnrolledAt     time.Time `db:"enrolled_at" json:"enrolled_at"`
	NameSnapshot   *string   `db:"name_snapshot" json:"name_snapshot,omitempty"`
	OrgText        *string   `db:"org_text" json:"org_text,omitempty"`
	RegionText     *string   `db:"region_text" json:"region_text,omitempty"`
	RoleTitle      *string   `db:"role_title" json:"role_title,omitempty"`
	RemoteID       *string   `db:"remote_id" json:"remote_id,omitempty"`
	RoomPreference *string   `db:"room_preference" json:"room_preference,omitempty"`
	SourceFile     string    `db:"source_file" json:"source_file"`
	SourceSheet    string    `db:"source_sheet" json:"source_sheet"`
}
