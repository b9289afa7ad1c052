package repository

import (
	"sync"

	"mruput.io/entities"
	"mruput.io/infrastructure/database/connection/datastore"
	"mruput.io/infrastructure/database/repository/mongo"
)

var attendanceRecordOnce = sync.Once{}

var attendanceRecordRepository mongo.MongoRepository[entities.AttendanceRecord]

func AttendanceRecordRepo() *mongo.MongoRepository[entities.AttendanceRecord] {
	attendanceRecordOnce.Do(func() {
		attendanceRecordRepository = mongo.MongoRepository[entities.AttendanceRecord]{Model: datastore.AttendanceRecordModel}
	})
	return &attendanceRecordRepository
}
