package repository

import (
	"sync"

	"mruput.io/entities"
	"mruput.io/infrastructure/database/connection/datastore"
	"mruput.io/infrastructure/database/repository/mongo"
)

var faceEnrollmentOnce = sync.Once{}

var faceEnrollmentRepository mongo.MongoRepository[entities.FaceEnrollment]

func FaceEnrollmentRepo() *mongo.MongoRepository[entities.FaceEnrollment] {
	faceEnrollmentOnce.Do(func() {
		faceEnrollmentRepository = mongo.MongoRepository[entities.FaceEnrollment]{Model: datastore.FaceEnrollmentModel}
	})
	return &faceEnrollmentRepository
}
