// internal/models/stop.go
package models

import (
	"gorm.io/gorm"
)

// Stop is a physical boarding point. Several stops may share a display Name
// (e.g. both sides of the same street); Code is what identifies them.
type Stop struct {
	gorm.Model

	Code            string  `json:"code" gorm:"size:32;not null;uniqueIndex" binding:"required"`
	Name            string  `json:"name" gorm:"size:63;not null;index" binding:"required"`
	Address         string  `json:"address" gorm:"size:127"`
	AddressDistance float64 `json:"address_distance"`
	Latitude        float64 `json:"latitude" binding:"required"`
	Longitude       float64 `json:"longitude" binding:"required"`
	IsActive        bool    `json:"is_active" gorm:"not null;index"`
	// e.g. "A", "B", "North", "South"
	SideIdentifier string `json:"side_identifier,omitempty" gorm:"size:50"`
}
