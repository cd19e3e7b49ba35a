// Package mongo provides the MongoDB implementation of the audit store.
// Audit records land here after being drained from the Postgres outbox by
// the trail poller.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sana-bookkeeping/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the audit trail collection in MongoDB
	AuditCollectionName = "audit_records"
)

// AuditRepository implements the audit.Store interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores an audit record. Delivery from the outbox is at-least-once,
// so a record that is already present is treated as delivered rather than
// appended twice.
func (r *AuditRepository) Append(ctx context.Context, record *audit.Record) error {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"record_id": record.ID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to check for existing audit record",
			"record_id", record.ID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing audit record: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := collection.InsertOne(ctx, record); err != nil {
		r.logger.Error("Failed to append audit record",
			"record_id", record.ID.String(),
			"action", string(record.Action),
			"error", err)
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}

// ListByCompany retrieves paginated audit records for a company.
// Results are sorted by creation time in descending order (newest first).
func (r *AuditRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"company_id": companyID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get audit records",
			"company_id", companyID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*audit.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode audit records",
			"company_id", companyID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}

// CountByCompany counts the total number of audit records for a company
func (r *AuditRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"company_id": companyID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count audit records",
			"company_id", companyID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}

	return count, nil
}

// EnsureIndexes creates the indexes the audit queries rely on. Safe to call
// on every startup.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(AuditCollectionName)

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "record_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, models); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		r.logger.Error("Failed to create audit indexes", "error", err)
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}

	return nil
}
