package datastore

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mruput.io/infrastructure/logger"
)

var (
	AttendanceRecordModel *mongo.Collection
	FaceEnrollmentModel   *mongo.Collection
	OfficeLocationModel   *mongo.Collection

	mongoClient *mongo.Client
)

func ConnectToDatabase() {
	if cancel := connectMongo(); cancel != nil {
		(*cancel)()
	}
}

func connectMongo() *context.CancelFunc {
	url := os.Getenv("DB_URL")

	if url == "" {
		logger.Error("mongo url missing")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)

	clientOpts := options.Client().ApplyURI(url)
	clientOpts.SetMinPoolSize(5)
	clientOpts.SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)

	if err != nil {
		logger.Warning("an error occured while starting the database", logger.LoggerOptions{Key: "error", Data: err})
		return &cancel
	}
	mongoClient = client

	db := client.Database(os.Getenv("DB_NAME"))
	setUpIndexes(ctx, db)

	logger.Info("connected to mongodb successfully")
	return &cancel
}

func setUpIndexes(ctx context.Context, db *mongo.Database) {
	AttendanceRecordModel = db.Collection("AttendanceRecords")
	AttendanceRecordModel.Indexes().CreateMany(ctx, []mongo.IndexModel{{
		Keys:    bson.D{{Key: "userID", Value: 1}, {Key: "decidedAt", Value: -1}},
		Options: options.Index(),
	}, {
		Keys:    bson.D{{Key: "attemptID", Value: 1}},
		Options: options.Index().SetUnique(true),
	}, {
		Keys:    bson.D{{Key: "officeID", Value: 1}},
		Options: options.Index(),
	}})

	FaceEnrollmentModel = db.Collection("FaceEnrollments")
	FaceEnrollmentModel.Indexes().CreateMany(ctx, []mongo.IndexModel{{
		Keys:    bson.D{{Key: "userID", Value: 1}},
		Options: options.Index(),
	}})

	OfficeLocationModel = db.Collection("OfficeLocations")

	logger.Info("mongodb indexes set up successfully")
}

// CleanUp disconnects from mongo.
func CleanUp() {
	if mongoClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Error("error disconnecting from mongodb", logger.LoggerOptions{Key: "error", Data: err})
	}
}
