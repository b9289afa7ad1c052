package connection

import (
	"mruput.io/infrastructure/database/connection/cache"
	"mruput.io/infrastructure/database/connection/datastore"
)

func ConnectToDatabase() {
	datastore.ConnectToDatabase()
	cache.ConnectToCache()
}
