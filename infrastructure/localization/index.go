package localization

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"mruput.io/infrastructure/logger"
)

// Indonesian is the deployment language; English is the fallback for clients
// that ask for it explicitly.
var (
	supported = []language.Tag{language.Indonesian, language.English}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

type entry struct {
	id string
	en string
}

var catalogEntries = map[string]entry{
	"ACCEPTED": {
		id: "Absensi berhasil dicatat.",
		en: "Attendance recorded.",
	},
	"IDENTITY_MISMATCH": {
		id: "Wajah tidak cocok dengan data yang terdaftar.",
		en: "Face does not match the enrolled profile.",
	},
	"NO_FACE_DETECTED": {
		id: "Wajah tidak terdeteksi. Pastikan hanya satu wajah terlihat jelas di kamera.",
		en: "No face detected. Make sure exactly one face is clearly visible.",
	},
	"ENROLLMENT_NOT_FOUND": {
		id: "Wajah belum terdaftar. Silakan daftarkan wajah terlebih dahulu.",
		en: "No enrolled face found. Please register your face first.",
	},
	"DIMENSION_MISMATCH": {
		id: "Data wajah terdaftar tidak valid. Silakan daftarkan ulang wajah Anda.",
		en: "The enrolled face data is invalid. Please register your face again.",
	},
	"REMOTE_SERVICE_ERROR": {
		id: "Layanan pengenalan wajah sedang tidak tersedia. Silakan coba lagi.",
		en: "The face recognition service is unavailable. Please try again.",
	},
	"CAPTURE_UNAVAILABLE": {
		id: "Kamera tidak dapat diakses. Periksa izin kamera Anda.",
		en: "The camera is unavailable. Check your camera permission.",
	},
	"LIVENESS_TIMEOUT": {
		id: "Kedipan mata tidak terdeteksi. Silakan berkedip saat diminta.",
		en: "No blink detected. Please blink when asked.",
	},
	"LOCATION_MOCKED": {
		id: "Fake GPS Terdeteksi! Mohon gunakan lokasi asli.",
		en: "Fake GPS detected! Please use your real location.",
	},
	"OUTSIDE_GEOFENCE": {
		id: "Berada di luar jangkauan kantor (%dm). Maksimal %dm.",
		en: "Outside the office range (%dm). Maximum %dm.",
	},
	"OFFICE_INACTIVE": {
		id: "Lokasi kantor tidak aktif.",
		en: "The office location is inactive.",
	},
	"OFFICE_NOT_SELECTED": {
		id: "Lokasi kantor belum dipilih.",
		en: "No office location selected.",
	},
	"LOCATION_INACCURATE": {
		id: "Akurasi GPS tidak cukup (%dm). Diperlukan akurasi < %dm. Mohon gunakan GPS di area terbuka.",
		en: "GPS accuracy too low (%dm). Accuracy below %dm is required. Please use GPS in an open area.",
	},
	"LOCATION_PERMISSION_DENIED": {
		id: "Izin lokasi ditolak. Silakan aktifkan izin lokasi di browser Anda",
		en: "Location permission denied. Please enable location access in your browser",
	},
	"LOCATION_TIMEOUT": {
		id: "Waktu permintaan lokasi habis",
		en: "The location request timed out",
	},
	"LOCATION_UNAVAILABLE": {
		id: "Informasi lokasi tidak tersedia",
		en: "Location information is unavailable",
	},
	"RECORD_NOT_SAVED": {
		id: "Hasil verifikasi tidak dapat disimpan. Silakan hubungi admin.",
		en: "The verification result could not be saved. Please contact an administrator.",
	},
}

func buildCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(language.Indonesian))
	for key, e := range catalogEntries {
		if err := builder.SetString(language.Indonesian, key, e.id); err != nil {
			logger.Error("could not register message", logger.LoggerOptions{Key: "key", Data: key})
		}
		if err := builder.SetString(language.English, key, e.en); err != nil {
			logger.Error("could not register message", logger.LoggerOptions{Key: "key", Data: key})
		}
	}
	return builder
}

// Resolve picks the best supported language for an Accept-Language header or
// a bare language code. Unknown or empty input resolves to Indonesian.
func Resolve(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return language.Indonesian
	}
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	if base.String() == "en" {
		return language.English
	}
	return language.Indonesian
}

// Message renders the user-facing text for a reason code.
func Message(lang language.Tag, key string, args ...any) string {
	if _, ok := catalogEntries[key]; !ok {
		return key
	}
	printer := message.NewPrinter(lang, message.Catalog(messages))
	return printer.Sprintf(key, args...)
}

func Has(key string) bool {
	_, ok := catalogEntries[key]
	return ok
}
