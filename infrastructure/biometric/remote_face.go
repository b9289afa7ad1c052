package biometric

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/logger"
)

// RemoteFaceService delegates extraction and comparison to the face
// recognition service over HTTP.
type RemoteFaceService struct {
	BaseURL string
	Client  *retryablehttp.Client
	// APIKey is sent as X-Service-Key when set.
	APIKey string
}

func NewRemoteFaceService(baseURL string, timeout time.Duration, retries int) *RemoteFaceService {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = retryLogger{}
	return &RemoteFaceService{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

// Load checks that the service is reachable. It lets the remote service act
// as the EmbeddingProvider of a LocalFaceService.
func (r *RemoteFaceService) Load(ctx context.Context) error {
	_, err := r.Health(ctx)
	return err
}

func (r *RemoteFaceService) Describe(ctx context.Context, image []byte) (types.FaceEmbedding, error) {
	return r.Enroll(ctx, image)
}

func (r *RemoteFaceService) Health(ctx context.Context) (*types.HealthResponse, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	r.authorise(req)
	res, err := r.Client.Do(req)
	if err != nil {
		return nil, &types.RemoteServiceError{Message: err.Error()}
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, &types.RemoteServiceError{StatusCode: res.StatusCode, Message: "health check failed"}
	}
	var health types.HealthResponse
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return nil, &types.RemoteServiceError{StatusCode: res.StatusCode, Message: err.Error()}
	}
	return &health, nil
}

func (r *RemoteFaceService) Enroll(ctx context.Context, image []byte) (types.FaceEmbedding, error) {
	var response types.FaceServiceResponse
	if err := r.post(ctx, "/enroll", types.EnrollRequest{Image: encodeImage(image)}, &response); err != nil {
		return nil, err
	}
	if len(response.Encoding) == 0 {
		return nil, types.ErrNoFaceDetected
	}
	return types.FromFloat64(response.Encoding), nil
}

// Verify sends the still frame and the stored descriptor to /verify. The
// returned distance is re-scored with the local rules so the verdict depends
// on the caller's threshold and not on the service's.
func (r *RemoteFaceService) Verify(ctx context.Context, image []byte, enrolled types.FaceEmbedding, threshold float64) (*types.VerifyResult, error) {
	if len(enrolled) != types.EmbeddingLength {
		return nil, &types.DimensionMismatchError{Candidate: types.EmbeddingLength, Enrolled: len(enrolled)}
	}
	var response types.FaceServiceResponse
	err := r.post(ctx, "/verify", types.VerifyRequest{
		Image:          encodeImage(image),
		StoredEncoding: enrolled.ToFloat64(),
	}, &response)
	if err != nil {
		return nil, err
	}
	if response.Distance == nil {
		return nil, &types.RemoteServiceError{StatusCode: http.StatusOK, Message: "verify response carried no distance"}
	}
	distance := *response.Distance
	return &types.VerifyResult{SimilarityResult: types.SimilarityResult{
		Distance:   distance,
		Similarity: Similarity(distance),
		IsMatch:    distance < threshold,
	}}, nil
}

// BatchVerify asks the service for the closest entry of the gallery.
func (r *RemoteFaceService) BatchVerify(ctx context.Context, image []byte, gallery []types.GalleryEntry) (*types.BatchVerifyResponse, error) {
	encodings := make([]types.BatchEncodingDTO, 0, len(gallery))
	for _, entry := range gallery {
		encodings = append(encodings, types.BatchEncodingDTO{ID: entry.ID, Encoding: entry.Encoding.ToFloat64()})
	}
	var response types.BatchVerifyResponse
	raw, err := r.do(ctx, "/batch-verify", types.BatchVerifyRequest{Image: encodeImage(image), Encodings: encodings})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, &types.RemoteServiceError{Message: err.Error()}
	}
	if !response.Success {
		return nil, classifyServiceError(http.StatusBadRequest, response.Error)
	}
	return &response, nil
}

func (r *RemoteFaceService) post(ctx context.Context, path string, body any, out *types.FaceServiceResponse) error {
	raw, err := r.do(ctx, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Error("error unmarshaling face service response", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "path",
			Data: path,
		})
		return &types.RemoteServiceError{Message: err.Error()}
	}
	if !out.Success {
		return classifyServiceError(http.StatusBadRequest, out.Error)
	}
	return nil
}

func (r *RemoteFaceService) do(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorise(req)

	res, err := r.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Error("error calling face service", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "path",
			Data: path,
		})
		return nil, &types.RemoteServiceError{Message: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &types.RemoteServiceError{StatusCode: res.StatusCode, Message: err.Error()}
	}
	if res.StatusCode >= http.StatusInternalServerError {
		logger.Error("face service failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: res.StatusCode,
		}, logger.LoggerOptions{
			Key:  "path",
			Data: path,
		})
		var failure types.FaceServiceResponse
		_ = json.Unmarshal(raw, &failure)
		return nil, classifyServiceError(res.StatusCode, failure.Error)
	}
	return raw, nil
}

// classifyServiceError maps the service's error strings onto the face errors
// the orchestrator knows how to handle.
func classifyServiceError(status int, message *string) error {
	if message == nil {
		return &types.RemoteServiceError{StatusCode: status, Message: "unknown error"}
	}
	lower := strings.ToLower(*message)
	switch {
	case strings.Contains(lower, "no face detected"), strings.Contains(lower, "could not generate face encoding"):
		return types.ErrNoFaceDetected
	case strings.Contains(lower, "multiple faces"):
		return types.ErrMultipleFaces
	}
	return &types.RemoteServiceError{StatusCode: status, Message: *message}
}

func (r *RemoteFaceService) authorise(req *retryablehttp.Request) {
	if r.APIKey != "" {
		req.Header.Set("X-Service-Key", r.APIKey)
	}
}

func encodeImage(image []byte) string {
	return base64.StdEncoding.EncodeToString(image)
}

// retryLogger routes retryablehttp's leveled logs through the app logger.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.Error(msg, kvOptions(keysAndValues)...)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug(msg, kvOptions(keysAndValues)...)
}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.Debug(msg, kvOptions(keysAndValues)...)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.Warning(msg, kvOptions(keysAndValues)...)
}

func kvOptions(keysAndValues []interface{}) []logger.LoggerOptions {
	opts := []logger.LoggerOptions{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		opts = append(opts, logger.LoggerOptions{Key: fmt.Sprint(keysAndValues[i]), Data: keysAndValues[i+1]})
	}
	return opts
}
