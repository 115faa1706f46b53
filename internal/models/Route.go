package models

import (
	"gorm.io/gorm"
)

// Route is one bus line. Its ordered stops live in RouteStop and its timetable in StopSchedule,
// both keyed by Name.
type Route struct {
	gorm.Model

	Name                string `json:"name" gorm:"size:31;not null;uniqueIndex" binding:"required"`
	OriginStopCode      string `json:"origin_stop_code" gorm:"size:32"`
	DestinationStopCode string `json:"destination_stop_code" gorm:"size:32"`
	Description         string `json:"description,omitempty" gorm:"size:500"`
	// Hex color used when drawing the route, e.g. "#FF5733"
	Color    string `json:"color,omitempty" gorm:"size:7"`
	IsActive bool   `json:"is_active" gorm:"not null;index"`

	// Path through the route's stops as WKB (SRID 4326), rebuilt whenever the stop sequence changes.
	Geometry []byte `json:"-" gorm:"type:bytea"`
}
