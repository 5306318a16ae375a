// Package models contains data structures for the blog's domain models.
package models

import "time"

// User is a registered author. Users are created on register and never mutated.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
