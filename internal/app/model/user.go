package model

import (
	"time"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash *string   `json:"-"` // nil for accounts from the identity provider
	Role         UserRole  `gorm:"type:varchar(20);default:'customer'" json:"role"`
	AuthSubject  *string   `gorm:"type:varchar(255);uniqueIndex" json:"-"` // identity provider subject
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
