package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

func TestReportRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewReportRepository(mt.DB)

		r := &domain.Report{UserID: 3, Username: "ana", Summary: "did things", ReportDate: time.Now().UTC()}
		if err := repo.Create(context.Background(), r); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if r.ID == "" {
			t.Fatalf("expected id to be assigned")
		}
	})

	mt.Run("create surfaces write errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		repo := NewReportRepository(mt.DB)

		if err := repo.Create(context.Background(), &domain.Report{UserID: 3}); err == nil {
			t.Fatalf("expected error")
		}
	})

	mt.Run("list returns page and total", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionReports
		day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: "r2"},
					{Key: "user_id", Value: int64(3)},
					{Key: "username", Value: "ana"},
					{Key: "report_date", Value: day},
					{Key: "summary", Value: "second"},
					{Key: "tasks", Value: bson.A{"a", "b"}},
					{Key: "hours_spent", Value: 7.5},
				},
				bson.D{
					{Key: "_id", Value: "r1"},
					{Key: "user_id", Value: int64(3)},
					{Key: "report_date", Value: day.AddDate(0, 0, -1)},
					{Key: "summary", Value: "first"},
				},
			),
		)
		repo := NewReportRepository(mt.DB)

		reports, total, err := repo.List(context.Background(), ports.ListReportsFilter{UserID: 3, Page: 1, Limit: 20})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 2 || len(reports) != 2 {
			t.Fatalf("expected 2/2, got total=%d len=%d", total, len(reports))
		}
		if reports[0].ID != "r2" || len(reports[0].Tasks) != 2 || reports[0].HoursSpent != 7.5 {
			t.Fatalf("unexpected first report: %+v", reports[0])
		}
	})
}

func TestReportFilter(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := reportFilter(ports.ListReportsFilter{UserID: 9, DateFrom: from})

	if f["user_id"] != int64(9) {
		t.Fatalf("expected user filter, got %v", f)
	}
	date, ok := f["report_date"].(bson.M)
	if !ok || date["$gte"] != from {
		t.Fatalf("expected lower date bound, got %v", f["report_date"])
	}
	if _, ok := date["$lte"]; ok {
		t.Fatalf("upper bound must be absent")
	}

	if all := reportFilter(ports.ListReportsFilter{}); len(all) != 0 {
		t.Fatalf("empty filter expected, got %v", all)
	}
}

func TestAuditRepository_InsertEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewAuditRepository(mt.DB)

		err := repo.InsertEvent(context.Background(), &domain.AuthEvent{
			Type:       domain.EventLoginSucceeded,
			UserID:     3,
			Username:   "ana",
			Provenance: domain.Provenance{IPAddress: "10.0.0.1"},
			OccurredAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("InsertEvent: %v", err)
		}
	})
}

func TestAuditDocument(t *testing.T) {
	now := time.Now()
	doc := auditDocument(&domain.AuthEvent{
		Type:       domain.EventForcedSignOut,
		UserID:     3,
		ActorID:    1,
		Sessions:   2,
		OccurredAt: now,
	}, now)

	if doc["type"] != "forced_sign_out" || doc["actor_id"] != int64(1) || doc["sessions"] != int64(2) {
		t.Fatalf("unexpected document: %v", doc)
	}
	if _, ok := doc["username"]; ok {
		t.Fatalf("empty username must be omitted")
	}
	if _, ok := doc["provenance"]; ok {
		t.Fatalf("empty provenance must be omitted")
	}
}
