package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

const collectionReports = "reports"

type ReportRepository struct {
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(collectionReports)}
}

// Create inserts a report, assigning it a fresh id.
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	report.ID = primitive.NewObjectID().Hex()
	if _, err := r.col.InsertOne(ctx, report); err != nil {
		return storeError("insert report", err)
	}
	return nil
}

// List returns one page of reports, newest report_date first, along with the
// total number of matching documents.
func (r *ReportRepository) List(ctx context.Context, f ports.ListReportsFilter) ([]*domain.Report, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := reportFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("count reports", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "report_date", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("find reports", err)
	}
	defer cur.Close(ctx)

	reports := make([]*domain.Report, 0, f.Limit)
	if err := cur.All(ctx, &reports); err != nil {
		return nil, 0, storeError("decode reports", err)
	}
	return reports, total, nil
}

func reportFilter(f ports.ListReportsFilter) bson.M {
	filter := bson.M{}
	if f.UserID != 0 {
		filter["user_id"] = f.UserID
	}
	date := bson.M{}
	if !f.DateFrom.IsZero() {
		date["$gte"] = f.DateFrom.UTC()
	}
	if !f.DateTo.IsZero() {
		date["$lte"] = f.DateTo.UTC()
	}
	if len(date) > 0 {
		filter["report_date"] = date
	}
	return filter
}

// EnsureIndexes creates necessary indexes on the reports collection.
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "report_date", Value: -1}}},
		{Keys: bson.D{{Key: "report_date", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
