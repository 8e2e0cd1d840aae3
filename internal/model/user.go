package model

import (
	"time"
)

type UserRole string

const (
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string    `gorm:"size:100;not null" json:"Name"`
	Email    string    `gorm:"size:100;unique;not null" json:"Email"`
	Password string    `gorm:"size:100;not null" json:"-"`
	Role     UserRole  `gorm:"type:enum('teacher','admin');default:'teacher'" json:"Role"`
	Disabled bool      `gorm:"default:false" json:"Disabled"`
	LastSeen time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"LastSeen"`
}

func (User) TableName() string {
	return "users"
}
