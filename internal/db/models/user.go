package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string  `gorm:"unique;not null"`
	PasswordHash string  `gorm:"not null"` // Bcrypt hash of password
	OtpSecret    *string // Hex secret, set only while an OTP challenge is outstanding
	Documents    []Document       `gorm:"foreignKey:OwnerID"`
	Shares       []SharedDocument `gorm:"foreignKey:UserID"`
}
