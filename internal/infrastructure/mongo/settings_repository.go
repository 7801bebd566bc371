package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crustntrust/site-api/internal/settings/domain"
)

// SettingsRepository stores site setting documents keyed by id.
type SettingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database, collection string) *SettingsRepository {
	return &SettingsRepository{collection: db.Collection(collection)}
}

func (r *SettingsRepository) Get(ctx context.Context, id string) (*domain.SiteSetting, error) {
	var doc SettingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate("settings.Get", err)
	}
	setting := doc.toDomain()
	return &setting, nil
}

// SetAcceptingApplications merges the flag into the document, creating it
// when absent. Other fields are left alone.
func (r *SettingsRepository) SetAcceptingApplications(ctx context.Context, id string, accepting bool, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"acceptingApplications": accepting,
			"updatedBy":             updatedBy,
		},
		"$currentDate": bson.M{"updatedAt": true},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return translate("settings.SetAcceptingApplications", err)
}

// EnsureDefault creates the document with an open flag unless it exists.
func (r *SettingsRepository) EnsureDefault(ctx context.Context, id string) (bool, error) {
	update := bson.M{
		"$setOnInsert": bson.M{
			"acceptingApplications": true,
			"updatedBy":             "system",
		},
		"$currentDate": bson.M{"updatedAt": true},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, translate("settings.EnsureDefault", err)
	}
	return res.UpsertedCount > 0, nil
}

// Watch follows the change stream of document id and calls fn with the flag
// after each change. A deleted document reports FlagUnset. It returns when
// ctx ends or the stream fails; change streams need a replica set.
func (r *SettingsRepository) Watch(ctx context.Context, id string, fn func(domain.Flag)) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": id}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return translate("settings.Watch", err)
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var event settingChangeEvent
		if err := stream.Decode(&event); err != nil {
			return translate("settings.Watch", err)
		}
		fn(event.flag())
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return translate("settings.Watch", stream.Err())
}

type settingChangeEvent struct {
	OperationType string           `bson:"operationType"`
	FullDocument  *SettingDocument `bson:"fullDocument"`
}

func (e settingChangeEvent) flag() domain.Flag {
	if e.OperationType == "delete" || e.FullDocument == nil {
		return domain.FlagUnset
	}
	return domain.DecodeFlag(e.FullDocument.AcceptingApplications)
}

func (d SettingDocument) toDomain() domain.SiteSetting {
	return domain.SiteSetting{
		ID:                    d.ID,
		AcceptingApplications: domain.DecodeFlag(d.AcceptingApplications),
		UpdatedAt:             d.UpdatedAt,
		UpdatedBy:             d.UpdatedBy,
	}
}
