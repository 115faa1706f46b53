package models

import "gorm.io/gorm"

const RoleAdmin = "admin"

// User is a catalog maintainer able to sign in to the admin API.
type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     string `json:"role"` // only "admin" for now
}
