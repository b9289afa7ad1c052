package recordsink

import (
	"mruput.io/application/services/verification"
	"mruput.io/entities"
	"mruput.io/infrastructure/ipresolver/types"
	"mruput.io/infrastructure/logger"
	"mruput.io/infrastructure/useragent"
)

// ToEntity converts a decided attempt into its stored form, resolving the
// device and the client IP. resolver may be nil.
func ToEntity(record *verification.Record, resolver types.IPResolver) entities.AttendanceRecord {
	d := record.Decision
	entity := entities.AttendanceRecord{
		ID:                       d.ID,
		AttemptID:                d.AttemptID,
		UserID:                   d.UserID,
		Outcome:                  string(d.Outcome),
		ReasonCode:               string(d.ReasonCode),
		Message:                  d.Message,
		Similarity:               d.Similarity,
		MatchDistance:            d.MatchDistance,
		BlinkCount:               d.BlinkCount,
		LivenessKind:             string(d.LivenessKind),
		WorkMode:                 string(d.WorkMode),
		OfficeID:                 d.OfficeID,
		Location:                 d.Location,
		DistanceFromOfficeMeters: d.DistanceFromOfficeMeters,
		SpoofFlagged:             d.ReasonCode == verification.ReasonLocationMocked || (d.Location != nil && d.Location.IsMocked),
		DecidedAt:                d.DecidedAt,
	}

	meta := record.Metadata
	if meta.UserAgent != "" || meta.DeviceID != "" {
		ua := useragent.ParseUserAgent(meta.UserAgent)
		entity.Device = &entities.RecordDevice{
			DeviceID: meta.DeviceID,
			Browser:  ua.Browser(),
			OS:       ua.OS,
			Mobile:   ua.Mobile,
			Raw:      meta.UserAgent,
		}
	}
	if meta.IPAddress != "" {
		entity.IP = &entities.RecordIP{Address: meta.IPAddress}
		if resolver != nil {
			result, err := resolver.LookUp(meta.IPAddress)
			if err != nil {
				logger.Debug("could not resolve client ip", logger.LoggerOptions{
					Key:  "error",
					Data: err,
				})
			} else {
				entity.IP.Country = result.CountryCode
				entity.IP.City = result.City
			}
		}
	}
	return entity
}
