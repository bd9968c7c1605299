package model

import "time"

// AdminToken is a registered FCM device token belonging to an
// administrator's browser. The token value is the unique key;
// re-registering the same token updates the existing row.
type AdminToken struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Token           string    `gorm:"uniqueIndex;size:512;not null" json:"token"`
	Label           string    `gorm:"size:100" json:"label,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	LastValidatedAt time.Time `gorm:"not null" json:"last_validated_at"`
}
