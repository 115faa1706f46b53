package models

import (
	"gorm.io/gorm"

	"bus_info/internal/schedule"
)

// StopSchedule is one scheduled visit of a trip to a stop. All entries sharing a TripID
// form one physical run of the route.
type StopSchedule struct {
	gorm.Model

	TripID      string             `json:"trip_id" gorm:"size:63;not null;index"`
	RouteName   string             `json:"route_name" gorm:"size:31;not null;index"`
	StopCode    string             `json:"stop_code" gorm:"size:32;not null;index"`
	ArrivalTime schedule.TimeOfDay `json:"arrival_time" gorm:"not null;index"`
	IsActive    bool               `json:"is_active" gorm:"not null;index"`

	Monday    bool `json:"monday" gorm:"not null"`
	Tuesday   bool `json:"tuesday" gorm:"not null"`
	Wednesday bool `json:"wednesday" gorm:"not null"`
	Thursday  bool `json:"thursday" gorm:"not null"`
	Friday    bool `json:"friday" gorm:"not null"`
	Saturday  bool `json:"saturday" gorm:"not null"`
	Sunday    bool `json:"sunday" gorm:"not null"`
}

func (s StopSchedule) ServiceDays() schedule.ServiceDays {
	return schedule.ServiceDays{s.Monday, s.Tuesday, s.Wednesday, s.Thursday, s.Friday, s.Saturday, s.Sunday}
}

func (s *StopSchedule) SetServiceDays(days schedule.ServiceDays) {
	s.Monday, s.Tuesday, s.Wednesday, s.Thursday = days[0], days[1], days[2], days[3]
	s.Friday, s.Saturday, s.Sunday = days[4], days[5], days[6]
}
