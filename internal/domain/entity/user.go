package entity

import (
	"time"
)

// User mirrors the account table shared by staff and superusers.
type User struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username    string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"type:varchar(254);not null;default:''" json:"email"`
	FirstName   string     `gorm:"type:varchar(150);not null;default:''" json:"first_name"`
	LastName    string     `gorm:"type:varchar(150);not null;default:''" json:"last_name"`
	Password    string     `gorm:"type:varchar(128);not null" json:"-"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	IsStaff     bool       `gorm:"not null" json:"is_staff"`
	IsSuperuser bool       `gorm:"not null" json:"is_superuser"`
	DateJoined  time.Time  `gorm:"autoCreateTime" json:"date_joined"`
	LastLogin   *time.Time `json:"last_login"`
}

func (User) TableName() string {
	return "users"
}
