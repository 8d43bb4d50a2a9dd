package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"unique"`
	Password string `json:"-"`
	Name     string `json:"name"`
	Role     string `json:"role" gorm:"default:'staff'"`
	IsActive bool   `json:"is_active"`
}
