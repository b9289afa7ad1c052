package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mruput.io/infrastructure/logger"
)

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	parsed := payload.ParseModel()
	_, err := repo.Model.InsertOne(ctx, parsed)
	if err != nil {
		logger.Error("mongo error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	created, ok := parsed.(*T)
	if !ok {
		return nil, errors.New("model parsed into an unexpected type")
	}
	return created, nil
}

func (repo *MongoRepository[T]) CreateBulk(ctx context.Context, payload []T) (*[]string, error) {
	docs := make([]interface{}, 0, len(payload))
	for _, p := range payload {
		docs = append(docs, p.ParseModel())
	}
	result, err := repo.Model.InsertMany(ctx, docs)
	if err != nil {
		logger.Error("mongo error occured while running CreateBulk", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	ids := []string{}
	for _, id := range result.InsertedIDs {
		if s, ok := id.(string); ok {
			ids = append(ids, s)
		}
	}
	return &ids, nil
}

// FindOneByFilter returns nil and no error when nothing matches.
func (repo *MongoRepository[T]) FindOneByFilter(ctx context.Context, filter map[string]interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var result T
	err := repo.Model.FindOne(ctx, withoutDeleted(filter), opts...).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("mongo error occured while running FindOneByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindByID(ctx context.Context, id string, opts ...*options.FindOneOptions) (*T, error) {
	return repo.FindOneByFilter(ctx, map[string]interface{}{"_id": id}, opts...)
}

func (repo *MongoRepository[T]) FindMany(ctx context.Context, filter map[string]interface{}, opts ...*options.FindOptions) (*[]T, error) {
	cursor, err := repo.Model.Find(ctx, withoutDeleted(filter), opts...)
	if err != nil {
		logger.Error("mongo error occured while running FindMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// FindManyPaginated pages by _id, which sorts by creation time for ULIDs.
// Pass the last id of the previous page to continue.
func (repo *MongoRepository[T]) FindManyPaginated(ctx context.Context, filter map[string]interface{}, limit int64, lastID *string, sort int) (*[]T, error) {
	query := withoutDeleted(filter)
	if lastID != nil {
		op := "$gt"
		if sort < 0 {
			op = "$lt"
		}
		query["_id"] = bson.M{op: *lastID}
	}
	if sort == 0 {
		sort = 1
	}
	return repo.FindMany(ctx, query, options.Find().SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: sort}}))
}

func (repo *MongoRepository[T]) CountDocs(ctx context.Context, filter map[string]interface{}) (int64, error) {
	count, err := repo.Model.CountDocuments(ctx, withoutDeleted(filter))
	if err != nil {
		logger.Error("mongo error occured while running CountDocs", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
	return count, err
}

func (repo *MongoRepository[T]) UpdatePartialByFilter(ctx context.Context, filter map[string]interface{}, payload interface{}) (int64, error) {
	result, err := repo.Model.UpdateMany(ctx, withoutDeleted(filter), bson.M{"$set": payload})
	if err != nil {
		logger.Error("mongo error occured while running UpdatePartialByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (repo *MongoRepository[T]) UpdatePartialByID(ctx context.Context, id string, payload interface{}) (int64, error) {
	return repo.UpdatePartialByFilter(ctx, map[string]interface{}{"_id": id}, payload)
}

func (repo *MongoRepository[T]) DeleteByID(ctx context.Context, id string) (int64, error) {
	result, err := repo.Model.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Error("mongo error occured while running DeleteByID", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return 0, err
	}
	return result.DeletedCount, nil
}

func withoutDeleted(filter map[string]interface{}) bson.M {
	query := bson.M{"deletedAt": nil}
	for k, v := range filter {
		query[k] = v
	}
	return query
}
