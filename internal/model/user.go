package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Username  string         `json:"username" gorm:"not null;uniqueIndex"`
	Email     string         `json:"email" gorm:"not null;uniqueIndex"`
	Password  string         `json:"-" gorm:"not null"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	IsStaff   bool           `json:"is_staff" gorm:"not null;default:false"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"date_joined"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuthToken is the opaque API credential issued when a user is created.
// Issuance happens through an explicit post-create hook in the user service.
type AuthToken struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Key       string    `json:"key" gorm:"not null;uniqueIndex"`
	UserID    uint      `json:"-" gorm:"not null;uniqueIndex"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"created_at"`
}
