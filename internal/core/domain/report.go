package domain

import "time"

// Report is a programmer's daily work report.
type Report struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	UserID     int64     `json:"user_id" bson:"user_id"`
	Username   string    `json:"username" bson:"username"`
	ReportDate time.Time `json:"report_date" bson:"report_date"`
	Summary    string    `json:"summary" bson:"summary"`
	Tasks      []string  `json:"tasks" bson:"tasks"`
	Blockers   string    `json:"blockers,omitempty" bson:"blockers,omitempty"`
	HoursSpent float64   `json:"hours_spent" bson:"hours_spent"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
