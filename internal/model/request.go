package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RequestStatus is the review state of a seat request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Applicant is a single member of a request's applicant list.
type Applicant struct {
	Name string `json:"name"`
}

// ApplicantList is stored as a JSON array in a single column.
type ApplicantList []Applicant

// Value implements driver.Valuer.
func (l ApplicantList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *ApplicantList) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported applicant column type %T", value)
	}
}

// Request is a study-room seat request submitted by an end user.
//
// IsApproved is tri-state: nil while the request is pending, then set
// exactly once by the admin decision. Status must stay consistent with
// it (APPROVED<->true, REJECTED<->false, PENDING<->nil).
type Request struct {
	ID         int64         `gorm:"primaryKey" json:"id"`
	Applicant  ApplicantList `gorm:"type:text;not null" json:"applicant"`
	Contact    string        `gorm:"size:50;not null" json:"contact"`
	Reason     string        `gorm:"size:500;not null" json:"reason"`
	Time       string        `gorm:"size:8;not null" json:"time"`
	IP         string        `gorm:"size:64" json:"ip"`
	PushToken  string        `gorm:"column:fcm;size:512" json:"fcm,omitempty"`
	IsApproved *bool         `json:"is_approved"`
	Status     RequestStatus `gorm:"size:16;not null;default:PENDING" json:"status"`
	CreatedAt  time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null" json:"updated_at"`
}

// StatusFor returns the status matching a tri-state approval value.
func StatusFor(isApproved *bool) RequestStatus {
	switch {
	case isApproved == nil:
		return StatusPending
	case *isApproved:
		return StatusApproved
	default:
		return StatusRejected
	}
}
