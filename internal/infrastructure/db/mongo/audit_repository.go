package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

const auditCollection = "audit_events"

// AuditRepository appends auth audit events to MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEvent struct {
	ID        string    `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    string    `bson:"user_id,omitempty"`
	Email     string    `bson:"email,omitempty"`
	ClientIP  string    `bson:"client_ip,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := mongoAuditEvent{
		ID:        event.ID,
		Action:    string(event.Action),
		UserID:    event.UserID,
		Email:     event.Email,
		ClientIP:  event.ClientIP,
		Timestamp: event.Timestamp,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return unavailable("insert audit event", err)
	}
	return nil
}
