package models

import "gorm.io/gorm"

// OrganizationCategory groups the city directory, e.g. "Hospitals" or "Pharmacies".
type OrganizationCategory struct {
	gorm.Model
	Name string `json:"name" gorm:"size:63;not null;uniqueIndex"`
}

// Organization is a directory entry riders can look up next to the timetable.
type Organization struct {
	gorm.Model
	Name       string `json:"name" gorm:"size:127;not null;index"`
	Address    string `json:"address" gorm:"size:255"`
	Phone      string `json:"phone" gorm:"size:31"`
	CategoryID uint   `json:"category_id" gorm:"not null;index"`

	Category OrganizationCategory `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
