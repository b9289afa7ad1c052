package geolocation

import "math"

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c * 1000
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

type CheckPolicy struct {
	Mode WorkMode
	// MinAccuracyMeters rejects fixes reporting a larger accuracy radius. Zero disables the check.
	MinAccuracyMeters float64
	// DefaultRadiusMeters is used for offices without a radius.
	DefaultRadiusMeters float64
}

// CheckLocation evaluates a fix against an office. A mocked fix is never
// trusted, whatever its distance. The radius boundary is inclusive. office may
// be nil for remote work modes.
func CheckLocation(fix GeoFix, office *Office, policy CheckPolicy) LocationVerdict {
	verdict := LocationVerdict{
		Trusted:    !fix.IsMocked,
		AccuracyOK: policy.MinAccuracyMeters <= 0 || fix.AccuracyMeters <= policy.MinAccuracyMeters,
	}

	if office != nil {
		radius := office.RadiusMeters
		if radius <= 0 {
			radius = policy.DefaultRadiusMeters
			if radius <= 0 {
				radius = DefaultRadiusMeters
			}
		}
		distance := HaversineMeters(fix.Latitude, fix.Longitude, office.Latitude, office.Longitude)
		verdict.DistanceMeters = &distance
		verdict.RadiusMeters = radius
		verdict.WithinGeofence = distance <= radius
	}

	switch {
	case !verdict.Trusted:
		verdict.Reason = ReasonMocked
	case policy.Mode.RequiresGeofence() && office == nil:
		verdict.Reason = ReasonNoOffice
	case policy.Mode.RequiresGeofence() && !office.IsActive:
		verdict.Reason = ReasonOfficeInactive
	case policy.Mode.RequiresGeofence() && !verdict.WithinGeofence:
		verdict.Reason = ReasonOutsideGeofence
	case !verdict.AccuracyOK:
		verdict.Reason = ReasonInaccurate
	}
	return verdict
}
