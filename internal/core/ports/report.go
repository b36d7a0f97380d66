package ports

import (
	"context"
	"time"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

// ListReportsFilter carries the query parameters for listing reports.
type ListReportsFilter struct {
	UserID   int64     // zero = every user (manager/admin view)
	DateFrom time.Time // optional: report_date >= DateFrom
	DateTo   time.Time // optional: report_date <= DateTo
	Page     int       // 1-based
	Limit    int       // capped at 100 by the service
}

// ReportRepository defines persistence operations for daily reports.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	List(ctx context.Context, filter ListReportsFilter) ([]*domain.Report, int64, error)
}

// CreateReportInput is the DTO passed from the transport layer.
type CreateReportInput struct {
	ReportDate time.Time
	Summary    string
	Tasks      []string
	Blockers   string
	HoursSpent float64
}

// ReportPage is one page of a report listing.
type ReportPage struct {
	Reports []*domain.Report
	Total   int64
	Page    int
	Limit   int
}

// ReportService is the reporting module's view of an authenticated caller.
type ReportService interface {
	Create(ctx context.Context, author *domain.Identity, in CreateReportInput) (*domain.Report, error)
	List(ctx context.Context, filter ListReportsFilter) (*ReportPage, error)
}
