package biometric

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mruput.io/infrastructure/biometric/types"
)

func newTestRemote(handler http.HandlerFunc) (*RemoteFaceService, func()) {
	server := httptest.NewServer(handler)
	return NewRemoteFaceService(server.URL, 5*time.Second, 0), server.Close
}

func TestRemoteFaceService_Enroll(t *testing.T) {
	image := []byte("still-frame")
	remote, closeFn := newTestRemote(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enroll" {
			t.Errorf("Expected path /enroll, got %s", r.URL.Path)
		}
		var body types.EnrollRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Image != base64.StdEncoding.EncodeToString(image) {
			t.Errorf("Expected base64 image, got %s", body.Image)
		}
		json.NewEncoder(w).Encode(types.FaceServiceResponse{
			Success:  true,
			Encoding: embedding(0.5).ToFloat64(),
		})
	})
	defer closeFn()

	encoding, err := remote.Enroll(context.Background(), image)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if len(encoding) != types.EmbeddingLength || encoding[0] != 0.5 {
		t.Errorf("Enroll returned %v", encoding[:1])
	}
}

func TestRemoteFaceService_EnrollNoFace(t *testing.T) {
	remote, closeFn := newTestRemote(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "No face detected in the image",
		})
	})
	defer closeFn()

	_, err := remote.Enroll(context.Background(), []byte("blank"))
	if !errors.Is(err, types.ErrNoFaceDetected) {
		t.Errorf("Expected ErrNoFaceDetected, got %v", err)
	}
}

func TestRemoteFaceService_EnrollMultipleFaces(t *testing.T) {
	remote, closeFn := newTestRemote(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "Multiple faces detected. Please ensure only one face is visible",
		})
	})
	defer closeFn()

	_, err := remote.Enroll(context.Background(), []byte("crowd"))
	if !errors.Is(err, types.ErrMultipleFaces) {
		t.Errorf("Expected ErrMultipleFaces, got %v", err)
	}
}

func TestRemoteFaceService_VerifyRescoresDistance(t *testing.T) {
	remote, closeFn := newTestRemote(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify" {
			t.Errorf("Expected path /verify, got %s", r.URL.Path)
		}
		var body types.VerifyRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.StoredEncoding) != types.EmbeddingLength {
			t.Errorf("Expected stored encoding of 128 values, got %d", len(body.StoredEncoding))
		}
		match := true
		distance := 0.25
		confidence := 75.0
		json.NewEncoder(w).Encode(types.FaceServiceResponse{
			Success:    true,
			Match:      &match,
			Distance:   &distance,
			Confidence: &confidence,
		})
	})
	defer closeFn()

	result, err := remote.Verify(context.Background(), []byte("still"), embedding(0.1), 0.2)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.IsMatch {
		t.Error("Expected the local threshold of 0.2 to reject distance 0.25")
	}
	if result.Distance != 0.25 || result.Similarity != 0.75 {
		t.Errorf("Unexpected result %+v", result.SimilarityResult)
	}
}

func TestRemoteFaceService_VerifyRejectsShortEncoding(t *testing.T) {
	remote, closeFn := newTestRemote(func(w http.ResponseWriter, r *http.Request) {
		t.Error("service must not be called for a corrupt enrollment")
	})
	defer closeFn()

	_, err := remote.Verify(context.Background(), []byte("still"), embedding(0.1)[:100], types.DefaultMatchThreshold)
	var mismatch *types.DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("Expected DimensionMismatchError, got %v", err)
	}
}

func TestRemoteFaceService_ServerError(t *testing.T) {
	remote, closeFn := newTestRemote(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Server error: boom"})
	})
	defer closeFn()

	_, err := remote.Enroll(context.Background(), []byte("still"))
	var remoteErr *types.RemoteServiceError
	if !errors.As(err, &remoteErr) {
		t.Errorf("Expected RemoteServiceError, got %v", err)
	}
}

func TestRemoteFaceService_BatchVerify(t *testing.T) {
	remote, closeFn := newTestRemote(func(w http.ResponseWriter, r *http.Request) {
		var body types.BatchVerifyRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Encodings) != 2 {
			t.Errorf("Expected 2 encodings, got %d", len(body.Encodings))
		}
		json.NewEncoder(w).Encode(types.BatchVerifyResponse{
			Success:    true,
			MatchFound: true,
			BestMatch:  &types.BestMatch{ID: "emp-2", Distance: 0.3, Confidence: 70},
		})
	})
	defer closeFn()

	response, err := remote.BatchVerify(context.Background(), []byte("still"), []types.GalleryEntry{
		{ID: "emp-1", Encoding: embedding(0.1)},
		{ID: "emp-2", Encoding: embedding(0.2)},
	})
	if err != nil {
		t.Fatalf("BatchVerify failed: %v", err)
	}
	if !response.MatchFound || response.BestMatch.ID != "emp-2" {
		t.Errorf("Unexpected batch response %+v", response)
	}
}

func TestRemoteFaceService_Health(t *testing.T) {
	remote, closeFn := newTestRemote(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Expected path /health, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(types.HealthResponse{Status: "healthy", Service: "face-recognition", Version: "1.0.0"})
	})
	defer closeFn()

	if err := remote.Load(context.Background()); err != nil {
		t.Errorf("Load failed: %v", err)
	}
}
