package models

import (
	"gorm.io/gorm"
)

// RouteStop places a stop at a position in a route's sequence.
// StopOrder is unique per route, but the same StopCode may appear at several
// positions on circular or out-and-back routes.
type RouteStop struct {
	gorm.Model

	RouteName string `json:"route_name" gorm:"size:31;not null;uniqueIndex:idx_route_stop_order"`
	StopCode  string `json:"stop_code" gorm:"size:32;not null;index"`
	StopOrder int    `json:"stop_order" gorm:"not null;uniqueIndex:idx_route_stop_order"`

	Stop Stop `json:"stop" gorm:"foreignKey:StopCode;references:Code"`
}
