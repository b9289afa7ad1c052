package repository

import (
	"sync"

	"mruput.io/entities"
	"mruput.io/infrastructure/database/connection/datastore"
	"mruput.io/infrastructure/database/repository/mongo"
)

var officeLocationOnce = sync.Once{}

var officeLocationRepository mongo.MongoRepository[entities.OfficeLocation]

func OfficeLocationRepo() *mongo.MongoRepository[entities.OfficeLocation] {
	officeLocationOnce.Do(func() {
		officeLocationRepository = mongo.MongoRepository[entities.OfficeLocation]{Model: datastore.OfficeLocationModel}
	})
	return &officeLocationRepository
}
