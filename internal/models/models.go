package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Stop{},
		&Route{},
		&RouteStop{},
		&StopSchedule{},
		&RouteSearch{},
		&OrganizationCategory{},
		&Organization{},
	}
}
