package geolocation

import (
	"math"
	"testing"
)

var office = Office{
	ID:           "hq",
	Name:         "Kantor Pusat",
	Latitude:     -6.175392,
	Longitude:    106.827153,
	RadiusMeters: 100,
	IsActive:     true,
}

func TestHaversineMeters(t *testing.T) {
	oneDegree := EarthRadiusKm * 1000 * math.Pi / 180
	if got := HaversineMeters(0, 0, 1, 0); math.Abs(got-oneDegree) > 1e-6 {
		t.Errorf("HaversineMeters() one degree = %v, want %v", got, oneDegree)
	}
	if got := HaversineMeters(office.Latitude, office.Longitude, office.Latitude, office.Longitude); got != 0 {
		t.Errorf("HaversineMeters() same point = %v", got)
	}
	a := HaversineMeters(-6.2, 106.8, -6.21, 106.85)
	b := HaversineMeters(-6.21, 106.85, -6.2, 106.8)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("HaversineMeters() not symmetric: %v vs %v", a, b)
	}
}

func TestCheckLocation(t *testing.T) {
	near := GeoFix{Latitude: -6.1755, Longitude: 106.8272, AccuracyMeters: 8}
	far := GeoFix{Latitude: -6.2000, Longitude: 106.8500, AccuracyMeters: 8}

	tests := []struct {
		name       string
		fix        GeoFix
		office     *Office
		policy     CheckPolicy
		wantReason Reason
		wantWithin bool
		wantTrust  bool
	}{
		{
			name:       "inside geofence",
			fix:        near,
			office:     &office,
			policy:     CheckPolicy{Mode: WorkFromOffice},
			wantReason: ReasonNone,
			wantWithin: true,
			wantTrust:  true,
		},
		{
			name:       "outside geofence",
			fix:        far,
			office:     &office,
			policy:     CheckPolicy{Mode: WorkFromOffice},
			wantReason: ReasonOutsideGeofence,
			wantTrust:  true,
		},
		{
			name:       "mocked fix inside geofence is rejected",
			fix:        GeoFix{Latitude: near.Latitude, Longitude: near.Longitude, IsMocked: true},
			office:     &office,
			policy:     CheckPolicy{Mode: WorkFromOffice},
			wantReason: ReasonMocked,
			wantWithin: true,
		},
		{
			name:       "mocked wins over outside geofence",
			fix:        GeoFix{Latitude: far.Latitude, Longitude: far.Longitude, IsMocked: true},
			office:     &office,
			policy:     CheckPolicy{Mode: WorkFromOffice},
			wantReason: ReasonMocked,
		},
		{
			name:       "work from home ignores distance",
			fix:        far,
			office:     nil,
			policy:     CheckPolicy{Mode: WorkFromHome},
			wantReason: ReasonNone,
			wantTrust:  true,
		},
		{
			name:       "field work still rejects mocked fix",
			fix:        GeoFix{Latitude: far.Latitude, Longitude: far.Longitude, IsMocked: true},
			policy:     CheckPolicy{Mode: WorkInField},
			wantReason: ReasonMocked,
		},
		{
			name:       "office mode without office",
			fix:        near,
			policy:     CheckPolicy{Mode: WorkFromOffice},
			wantReason: ReasonNoOffice,
			wantTrust:  true,
		},
		{
			name:       "inactive office",
			fix:        near,
			office:     &Office{Latitude: office.Latitude, Longitude: office.Longitude, RadiusMeters: 100},
			policy:     CheckPolicy{Mode: WorkFromOffice},
			wantReason: ReasonOfficeInactive,
			wantWithin: true,
			wantTrust:  true,
		},
		{
			name:       "poor accuracy",
			fix:        GeoFix{Latitude: near.Latitude, Longitude: near.Longitude, AccuracyMeters: 35},
			office:     &office,
			policy:     CheckPolicy{Mode: WorkFromOffice, MinAccuracyMeters: 20},
			wantReason: ReasonInaccurate,
			wantWithin: true,
			wantTrust:  true,
		},
		{
			name:       "accuracy check disabled",
			fix:        GeoFix{Latitude: near.Latitude, Longitude: near.Longitude, AccuracyMeters: 35},
			office:     &office,
			policy:     CheckPolicy{Mode: WorkFromOffice},
			wantReason: ReasonNone,
			wantWithin: true,
			wantTrust:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := CheckLocation(tt.fix, tt.office, tt.policy)
			if verdict.Reason != tt.wantReason {
				t.Errorf("CheckLocation() reason = %q, want %q", verdict.Reason, tt.wantReason)
			}
			if verdict.WithinGeofence != tt.wantWithin {
				t.Errorf("CheckLocation() within = %v, want %v", verdict.WithinGeofence, tt.wantWithin)
			}
			if verdict.Trusted != tt.wantTrust {
				t.Errorf("CheckLocation() trusted = %v, want %v", verdict.Trusted, tt.wantTrust)
			}
			if verdict.Trusted == tt.fix.IsMocked {
				t.Errorf("CheckLocation() trusted must be the negation of isMocked")
			}
		})
	}
}

func TestCheckLocationBoundaryIsInclusive(t *testing.T) {
	fix := GeoFix{Latitude: -6.1760, Longitude: 106.8275}
	distance := HaversineMeters(fix.Latitude, fix.Longitude, office.Latitude, office.Longitude)

	onEdge := office
	onEdge.RadiusMeters = distance
	if verdict := CheckLocation(fix, &onEdge, CheckPolicy{Mode: WorkFromOffice}); !verdict.WithinGeofence {
		t.Errorf("fix exactly on the radius must be inside")
	}

	justShort := office
	justShort.RadiusMeters = distance - 0.001
	if verdict := CheckLocation(fix, &justShort, CheckPolicy{Mode: WorkFromOffice}); verdict.WithinGeofence {
		t.Errorf("fix beyond the radius must be outside")
	}
}

func TestCheckLocationDefaultRadius(t *testing.T) {
	noRadius := office
	noRadius.RadiusMeters = 0

	verdict := CheckLocation(GeoFix{Latitude: office.Latitude, Longitude: office.Longitude}, &noRadius, CheckPolicy{Mode: WorkFromOffice})
	if verdict.RadiusMeters != DefaultRadiusMeters {
		t.Errorf("radius = %v, want %v", verdict.RadiusMeters, DefaultRadiusMeters)
	}

	verdict = CheckLocation(GeoFix{Latitude: office.Latitude, Longitude: office.Longitude}, &noRadius, CheckPolicy{Mode: WorkFromOffice, DefaultRadiusMeters: 75})
	if verdict.RadiusMeters != 75 {
		t.Errorf("radius = %v, want 75", verdict.RadiusMeters)
	}
}
