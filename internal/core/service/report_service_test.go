package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

type stubReportRepo struct {
	created    []*domain.Report
	lastFilter ports.ListReportsFilter
	err        error
}

func (r *stubReportRepo) Create(_ context.Context, rep *domain.Report) error {
	if r.err != nil {
		return r.err
	}
	rep.ID = "rep-1"
	r.created = append(r.created, rep)
	return nil
}

func (r *stubReportRepo) List(_ context.Context, f ports.ListReportsFilter) ([]*domain.Report, int64, error) {
	r.lastFilter = f
	if r.err != nil {
		return nil, 0, r.err
	}
	return r.created, int64(len(r.created)), nil
}

func TestReportService_Create(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, zerolog.Nop())
	fixed := time.Date(2026, 7, 9, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	author := &domain.Identity{UserID: 5, Username: "ana", Role: domain.RoleProgrammer}
	rep, err := svc.Create(context.Background(), author, ports.CreateReportInput{Summary: "  shipped login  ", HoursSpent: 6})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rep.ID != "rep-1" || rep.UserID != 5 || rep.Username != "ana" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Summary != "shipped login" {
		t.Fatalf("summary must be trimmed, got %q", rep.Summary)
	}
	if want := time.Date(2026, 7, 9, 0, 0, 0, 0, time.UTC); !rep.ReportDate.Equal(want) {
		t.Fatalf("expected report date %v, got %v", want, rep.ReportDate)
	}
	if rep.Tasks == nil {
		t.Fatalf("tasks must never be nil")
	}
}

func TestReportService_Create_Validation(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, zerolog.Nop())
	author := &domain.Identity{UserID: 5}

	if _, err := svc.Create(context.Background(), nil, ports.CreateReportInput{Summary: "x"}); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Create(context.Background(), author, ports.CreateReportInput{Summary: "  "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank summary, got %v", err)
	}
	if _, err := svc.Create(context.Background(), author, ports.CreateReportInput{Summary: "x", HoursSpent: 25}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for hours, got %v", err)
	}
}

func TestReportService_List_Pagination(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, zerolog.Nop())

	page, err := svc.List(context.Background(), ports.ListReportsFilter{Page: 0, Limit: 500})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 || page.Limit != maxReportPageSize {
		t.Fatalf("unexpected paging: page=%d limit=%d", page.Page, page.Limit)
	}
	if repo.lastFilter.Limit != maxReportPageSize {
		t.Fatalf("repo must receive the clamped limit")
	}

	page, _ = svc.List(context.Background(), ports.ListReportsFilter{})
	if page.Limit != defaultReportPageSize {
		t.Fatalf("expected default limit, got %d", page.Limit)
	}
}
