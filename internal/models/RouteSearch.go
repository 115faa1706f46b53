package models

import "gorm.io/gorm"

// RouteSearch remembers a user's journey query so it can be offered again.
type RouteSearch struct {
	gorm.Model
	UserID      int64  `json:"user_id" gorm:"not null;index"`
	Origin      string `json:"origin" gorm:"size:63;not null"`
	Destination string `json:"destination" gorm:"size:63;not null"`
}
