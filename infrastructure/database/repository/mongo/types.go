package mongo

import (
	"go.mongodb.org/mongo-driver/mongo"

	"mruput.io/infrastructure/database"
)

type MongoRepository[T database.BaseModel] struct {
	Model *mongo.Collection
}
