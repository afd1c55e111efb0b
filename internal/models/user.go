// Package models contains the domain types shared by the store adapters and the coordinator.
package models

import "time"

// User is the canonical user record. The graph store keeps a projection of
// UserID and Name only.
type User struct {
	UserID   string    `gorm:"primaryKey;size:191" json:"user_id"`
	Name     string    `gorm:"not null" json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
