package types

type IPResolver interface {
	ConnectToDB(path string) error
	LookUp(ipAddress string) (*IPResult, error)
}

type IPResult struct {
	AccuracyRadius int     `bson:"accuracyRadius" json:"accuracyRadius"`
	IPAddress      string  `bson:"ipAddress" json:"ipAddress"`
	Longitude      float64 `bson:"longitude" json:"longitude"`
	Latitude       float64 `bson:"latitude" json:"latitude"`
	City           string  `bson:"city" json:"city"`
	CountryCode    string  `bson:"countryCode" json:"countryCode"`
}
