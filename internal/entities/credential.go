package entities

import "time"

// StoredCredential is one named slot of the CLI's credential file.
// Value is base64 AES-256-GCM ciphertext, never the plain token.
type StoredCredential struct {
	Slot      string    `gorm:"primaryKey;size:64" json:"slot"`
	Value     string    `gorm:"type:text;not null" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
