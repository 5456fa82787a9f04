package models

type DashboardStats struct {
	UsersTotal      int `json:"users_total"`
	TeamsTotal      int `json:"teams_total"`
	ConfirmedEvents int `json:"confirmed_events"`
	PendingEvents   int `json:"pending_events"`
	MessagesTotal   int `json:"messages_total"`
}

type PlayerDashboard struct {
	TeamsCount      int             `json:"teams_count"`
	UpcomingEvents  []*Event        `json:"upcoming_events"`
	PendingPayments []*EventPayment `json:"pending_payments"`
}
