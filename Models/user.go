package Models

import (
	"gorm.io/gorm"
)

// User is a back-office account. Permission levels: 1 read, 3 ledger
// mutations, 4 user administration.
type User struct {
	gorm.Model
	Name       string `json:"name" gorm:"size:255;not null"`
	Email      string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password   []byte `json:"-" gorm:"not null"`
	Permission int    `json:"permission" gorm:"not null;default:1"`
	IsApproved int    `json:"is_approved" gorm:"not null;default:0"`
}
