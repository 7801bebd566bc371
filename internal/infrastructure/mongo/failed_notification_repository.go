package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crustntrust/site-api/internal/infrastructure/messenger"
)

// FailedNotificationRepository keeps notifications that exhausted their
// retries so an operator can resend them.
type FailedNotificationRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewFailedNotificationRepository(db *mongo.Database, collection string) *FailedNotificationRepository {
	return &FailedNotificationRepository{collection: db.Collection(collection), now: time.Now}
}

// Record stores f with status pending.
func (r *FailedNotificationRepository) Record(ctx context.Context, f messenger.Failure) error {
	now := r.now().UTC()
	doc := FailedNotificationDocument{
		Target:      f.Target,
		Payload:     f.Payload,
		Error:       f.Err.Error(),
		Attempts:    f.Attempts,
		Status:      "pending",
		CreatedAt:   now,
		LastTriedAt: now,
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return translate("failedNotifications.Record", err)
}
