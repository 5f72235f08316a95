package models

import "gorm.io/gorm"

// User roles. Every account registers as a regular user; the admin
// account is seeded at migration time.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Name       string `gorm:"not null"`
	Username   string `gorm:"unique;not null"`
	EmployeeID string `gorm:"unique;not null"`
	Department string `gorm:"not null"`
	Password   string `gorm:"not null" json:"-"` // Don't expose password hash
	Role       string `gorm:"not null;default:user"`
}
