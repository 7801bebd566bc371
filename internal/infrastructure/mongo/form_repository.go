package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/forms/domain"
)

// FormRepository stores form definitions keyed by slug.
type FormRepository struct {
	collection *mongo.Collection
}

func NewFormRepository(db *mongo.Database, collection string) *FormRepository {
	return &FormRepository{collection: db.Collection(collection)}
}

// List returns every stored definition with its questions normalized.
func (r *FormRepository) List(ctx context.Context) ([]domain.FormDefinition, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, translate("forms.List", err)
	}
	defer cursor.Close(ctx)

	forms := make([]domain.FormDefinition, 0)
	for cursor.Next(ctx) {
		var doc FormDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, translate("forms.List", err)
		}
		forms = append(forms, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, translate("forms.List", err)
	}
	return forms, nil
}

// FindBySlug looks a definition up by its slug field.
func (r *FormRepository) FindBySlug(ctx context.Context, slug string) (*domain.FormDefinition, error) {
	var doc FormDocument
	filter := bson.M{"slug": strings.TrimSpace(slug)}
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate("forms.FindBySlug", err)
	}
	form := doc.toDomain()
	return &form, nil
}

// Create inserts a new definition with _id = slug.
func (r *FormRepository) Create(ctx context.Context, form domain.FormDefinition) error {
	doc := formToDocument(form)
	update := bson.M{
		"$setOnInsert": bson.M{
			"slug":        doc.Slug,
			"title":       doc.Title,
			"description": doc.Description,
			"questions":   doc.Questions,
		},
		"$currentDate": bson.M{"createdAt": true, "updatedAt": true},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return translate("forms.Create", err)
	}
	if res.UpsertedCount == 0 {
		return apperr.Conflict("forms.Create", "")
	}
	return nil
}

// Upsert writes title, description and questions, creating the document when
// absent. Last write wins.
func (r *FormRepository) Upsert(ctx context.Context, form domain.FormDefinition) error {
	doc := formToDocument(form)
	update := bson.M{
		"$set": bson.M{
			"slug":        doc.Slug,
			"title":       doc.Title,
			"description": doc.Description,
			"questions":   doc.Questions,
		},
		"$currentDate": bson.M{"updatedAt": true},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, options.Update().SetUpsert(true))
	return translate("forms.Upsert", err)
}

// Delete removes the definition with the given slug.
func (r *FormRepository) Delete(ctx context.Context, slug string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return translate("forms.Delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("forms.Delete", "")
	}
	return nil
}
