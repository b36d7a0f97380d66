package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

const (
	defaultReportPageSize = 20
	maxReportPageSize     = 100
)

type ReportService struct {
	repo   ports.ReportRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewReportService(repo ports.ReportRepository, logger zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, logger: logger, now: time.Now}
}

// Create files a daily report on behalf of the authenticated author. A missing
// report date means today; dates are normalised to midnight UTC.
func (s *ReportService) Create(ctx context.Context, author *domain.Identity, in ports.CreateReportInput) (*domain.Report, error) {
	if author == nil {
		return nil, domain.ErrUnauthenticated
	}
	summary := strings.TrimSpace(in.Summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: summary is required", domain.ErrInvalidInput)
	}
	if in.HoursSpent < 0 || in.HoursSpent > 24 {
		return nil, fmt.Errorf("%w: hours_spent must be between 0 and 24", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	date := in.ReportDate
	if date.IsZero() {
		date = now
	}

	report := &domain.Report{
		UserID:     author.UserID,
		Username:   author.Username,
		ReportDate: truncateDay(date),
		Summary:    summary,
		Tasks:      in.Tasks,
		Blockers:   strings.TrimSpace(in.Blockers),
		HoursSpent: in.HoursSpent,
		CreatedAt:  now,
	}
	if report.Tasks == nil {
		report.Tasks = []string{}
	}

	if err := s.repo.Create(ctx, report); err != nil {
		s.logger.Error().Err(err).Int64("user_id", author.UserID).Msg("failed to create report")
		return nil, err
	}

	s.logger.Info().Str("report_id", report.ID).Int64("user_id", author.UserID).Msg("report created")
	return report, nil
}

// List returns one page of reports matching filter.
func (s *ReportService) List(ctx context.Context, filter ports.ListReportsFilter) (*ports.ReportPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultReportPageSize
	}
	if filter.Limit > maxReportPageSize {
		filter.Limit = maxReportPageSize
	}

	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ReportPage{Reports: reports, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
