package maxmind

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/maxminddb-golang"

	"mruput.io/infrastructure/ipresolver/types"
	"mruput.io/infrastructure/logger"
)

var ErrNotConnected = errors.New("maxmind db not loaded")

type MaxMindIPResolver struct {
	mu sync.RWMutex
	db *maxminddb.Reader
}

func (mmResolver *MaxMindIPResolver) ConnectToDB(path string) error {
	db, err := maxminddb.Open(path)
	if err != nil {
		logger.Error("could not connect to mmdb", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "path",
			Data: path,
		})
		return err
	}
	mmResolver.mu.Lock()
	mmResolver.db = db
	mmResolver.mu.Unlock()
	logger.Info("connected to maxmind db successfully")
	return nil
}

type maxmindLookupResult struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Location struct {
		Longitude      float64 `maxminddb:"longitude"`
		Latitude       float64 `maxminddb:"latitude"`
		AccuracyRadius int     `maxminddb:"accuracy_radius"`
	} `maxminddb:"location"`
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

func (mmResolver *MaxMindIPResolver) LookUp(ipAddress string) (*types.IPResult, error) {
	mmResolver.mu.RLock()
	db := mmResolver.db
	mmResolver.mu.RUnlock()
	if db == nil {
		return nil, ErrNotConnected
	}
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return nil, fmt.Errorf("invalid ip address %q", ipAddress)
	}
	var result maxmindLookupResult
	if err := db.Lookup(ip, &result); err != nil {
		return nil, err
	}
	return &types.IPResult{
		Longitude:      result.Location.Longitude,
		Latitude:       result.Location.Latitude,
		City:           result.City.Names["en"],
		CountryCode:    result.Country.ISOCode,
		AccuracyRadius: result.Location.AccuracyRadius,
		IPAddress:      ipAddress,
	}, nil
}
