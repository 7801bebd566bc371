package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/content/domain"
)

// PublicationRepository stores articles about the business.
type PublicationRepository struct {
	collection *mongo.Collection
}

func NewPublicationRepository(db *mongo.Database, collection string) *PublicationRepository {
	return &PublicationRepository{collection: db.Collection(collection)}
}

func (r *PublicationRepository) List(ctx context.Context) ([]domain.Publication, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, translate("publications.List", err)
	}
	defer cursor.Close(ctx)

	var docs []PublicationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate("publications.List", err)
	}
	items := make([]domain.Publication, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toDomain())
	}
	return items, nil
}

func (r *PublicationRepository) FindByID(ctx context.Context, id string) (*domain.Publication, error) {
	objectID, err := objectIDFromHex("publications.FindByID", id)
	if err != nil {
		return nil, err
	}
	var doc PublicationDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translate("publications.FindByID", err)
	}
	p := doc.toDomain()
	return &p, nil
}

// Create inserts p and returns its id. createdAt and updatedAt are set by the server.
func (r *PublicationRepository) Create(ctx context.Context, p domain.Publication) (string, error) {
	objectID := primitive.NewObjectID()
	fields := publicationFields(p)
	update := bson.M{
		"$setOnInsert": fields,
		"$currentDate": bson.M{"createdAt": true, "updatedAt": true},
	}
	if _, err := r.collection.UpdateByID(ctx, objectID, update, upsert()); err != nil {
		return "", translate("publications.Create", err)
	}
	return objectID.Hex(), nil
}

// Update overwrites the editable fields of p. The legacy isPublic flag is dropped.
func (r *PublicationRepository) Update(ctx context.Context, p domain.Publication) error {
	objectID, err := objectIDFromHex("publications.Update", p.ID)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set":         publicationFields(p),
		"$unset":       bson.M{"isPublic": ""},
		"$currentDate": bson.M{"updatedAt": true},
	}
	res, err := r.collection.UpdateByID(ctx, objectID, update)
	if err != nil {
		return translate("publications.Update", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("publications.Update", "")
	}
	return nil
}

func publicationFields(p domain.Publication) bson.M {
	return bson.M{
		"title":           p.Title,
		"description":     p.Description,
		"imagePath":       p.ImagePath,
		"imageUrl":        p.ImageURL,
		"articleUrl":      p.ArticleURL,
		"publicationDate": p.PublicationDate,
		"accessType":      string(p.AccessType),
		"updatedBy":       p.UpdatedBy,
	}
}

func objectIDFromHex(op, id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.KindNotFound, op, err)
	}
	return objectID, nil
}
