package models

import (
	"gorm.io/gorm"
)

type AccessLevel string

const (
	AccessRead AccessLevel = "read"
)

// SharedDocument grants a user read access to a document and is the unit of
// participation in the signing roster. Row ids are monotonic, which pins the
// roster's canonical order.
type SharedDocument struct {
	gorm.Model
	DocumentID  string      `gorm:"not null;uniqueIndex:idx_user_document"`
	UserID      uint        `gorm:"not null;uniqueIndex:idx_user_document"`
	AccessLevel AccessLevel `gorm:"not null;default:'read'"`
	Signed      bool        `gorm:"not null;default:false"`
}
