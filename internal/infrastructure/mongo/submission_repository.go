package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/forms/domain"
)

// SubmissionRepository stores form submissions.
type SubmissionRepository struct {
	collection *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database, collection string) *SubmissionRepository {
	return &SubmissionRepository{collection: db.Collection(collection)}
}

// Create inserts sub. The server assigns submittedAt and statusUpdatedAt.
func (r *SubmissionRepository) Create(ctx context.Context, sub domain.Submission) error {
	answers := sub.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"formId":          sub.FormID,
			"formSlug":        sub.FormSlug,
			"answers":         answers,
			"imagePaths":      sub.ImagePaths,
			"status":          string(sub.Status),
			"statusUpdatedBy": sub.StatusUpdatedBy,
		},
		"$currentDate": bson.M{
			"submittedAt":     true,
			"statusUpdatedAt": true,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": sub.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return translate("submissions.Create", err)
	}
	if res.UpsertedCount == 0 {
		return apperr.Conflict("submissions.Create", "")
	}
	return nil
}

// ListByFormSlug returns the submissions of one form, newest first.
func (r *SubmissionRepository) ListByFormSlug(ctx context.Context, slug string) ([]domain.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"formSlug": slug}, opts)
	if err != nil {
		return nil, translate("submissions.ListByFormSlug", err)
	}
	defer cursor.Close(ctx)

	var docs []SubmissionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate("submissions.ListByFormSlug", err)
	}
	subs := make([]domain.Submission, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, doc.toDomain())
	}
	return subs, nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*domain.Submission, error) {
	var doc SubmissionDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate("submissions.FindByID", err)
	}
	sub := doc.toDomain()
	return &sub, nil
}

// UpdateStatus writes the review fields only.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, actor string) error {
	update := bson.M{
		"$set": bson.M{
			"status":          string(status),
			"statusUpdatedBy": actor,
		},
		"$currentDate": bson.M{
			"statusUpdatedAt": true,
			"reviewedAt":      true,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate("submissions.UpdateStatus", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("submissions.UpdateStatus", "")
	}
	return nil
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate("submissions.Delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("submissions.Delete", "")
	}
	return nil
}

// EnsureIndexes creates the listing index.
func (r *SubmissionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "formSlug", Value: 1}, {Key: "submittedAt", Value: -1}},
	})
	return translate("submissions.EnsureIndexes", err)
}
