package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/content/domain"
)

// LocationRepository stores food truck stops.
type LocationRepository struct {
	collection *mongo.Collection
}

func NewLocationRepository(db *mongo.Database, collection string) *LocationRepository {
	return &LocationRepository{collection: db.Collection(collection)}
}

func (r *LocationRepository) List(ctx context.Context) ([]domain.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("locations.List", err)
	}
	defer cursor.Close(ctx)

	var docs []LocationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate("locations.List", err)
	}
	items := make([]domain.Location, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toDomain())
	}
	return items, nil
}

func (r *LocationRepository) FindByID(ctx context.Context, id string) (*domain.Location, error) {
	objectID, err := objectIDFromHex("locations.FindByID", id)
	if err != nil {
		return nil, err
	}
	var doc LocationDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translate("locations.FindByID", err)
	}
	l := doc.toDomain()
	return &l, nil
}

func (r *LocationRepository) Create(ctx context.Context, l domain.Location) (string, error) {
	objectID := primitive.NewObjectID()
	update := bson.M{
		"$setOnInsert": locationFields(l),
		"$currentDate": bson.M{"updatedAt": true},
	}
	if _, err := r.collection.UpdateByID(ctx, objectID, update, upsert()); err != nil {
		return "", translate("locations.Create", err)
	}
	return objectID.Hex(), nil
}

func (r *LocationRepository) Update(ctx context.Context, l domain.Location) error {
	objectID, err := objectIDFromHex("locations.Update", l.ID)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set":         locationFields(l),
		"$currentDate": bson.M{"updatedAt": true},
	}
	res, err := r.collection.UpdateByID(ctx, objectID, update)
	if err != nil {
		return translate("locations.Update", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("locations.Update", "")
	}
	return nil
}

func locationFields(l domain.Location) bson.M {
	return bson.M{
		"name":         l.Name,
		"neighborhood": l.Neighborhood,
		"weekdayHours": l.WeekdayHours,
		"weekendHours": l.WeekendHours,
		"imagePath":    l.ImagePath,
		"imageUrl":     l.ImageURL,
		"mapsUrl":      l.MapsURL,
		"sortOrder":    l.SortOrder,
		"updatedBy":    l.UpdatedBy,
	}
}

func upsert() *options.UpdateOptions {
	return options.Update().SetUpsert(true)
}
