package models

import (
	"gorm.io/gorm"
)

type Document struct {
	gorm.Model
	ID        string `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	FilePath  string `gorm:"not null"`
	IV        string `gorm:"not null"` // Hex-encoded, never exposed outside the custody layer
	Mimetype  string
	CRC       string // CRC-32 of the last-signed plaintext, 8 hex chars uppercase
	Signature string // Roster signature, hex; empty until a signing round completes
	OwnerID   uint   `gorm:"index"`

	SharedWith []SharedDocument `gorm:"foreignKey:DocumentID"`
}
