package routev1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mruput.io/application/constants"
	"mruput.io/application/services/verification"
	attendance_usecases "mruput.io/application/usecases/attendance"
	"mruput.io/infrastructure/auth"
	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/geolocation"
	middlewares "mruput.io/infrastructure/middleware"
)

const (
	testIssuer = "mruput-hr"
	testSecret = "attendance-test-secret"
)

type envelope struct {
	Message      string          `json:"message"`
	Body         json.RawMessage `json:"body"`
	ResponseCode *uint           `json:"response_code"`
	Errors       []string        `json:"errors"`
}

func decodeJSON(t *testing.T, res *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
}

type enrolledFaces map[string]types.FaceEmbedding

func (e enrolledFaces) GetEnrolledEmbedding(ctx context.Context, userID string) (types.FaceEmbedding, error) {
	face, ok := e[userID]
	if !ok {
		return nil, verification.ErrEnrollmentNotFound
	}
	return face, nil
}

type offices map[string]*geolocation.Office

func (o offices) FindOffice(ctx context.Context, officeID string) (*geolocation.Office, error) {
	return o[officeID], nil
}

func blinkFrames(pattern string) []liveness.Frame {
	open := []liveness.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 0}, {X: 2, Y: -1}, {X: 1, Y: -1}}
	closed := []liveness.Point{{X: 0, Y: 0}, {X: 1, Y: 0.1}, {X: 2, Y: 0.1}, {X: 3, Y: 0}, {X: 2, Y: -0.1}, {X: 1, Y: -0.1}}
	out := make([]liveness.Frame, 0, len(pattern))
	for _, r := range pattern {
		eye := open
		if r == 'c' {
			eye = closed
		}
		out = append(out, liveness.Frame{LeftEye: eye, RightEye: eye})
	}
	return out
}

type attendanceClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
	device string
}

func (c *attendanceClient) do(method string, path string, body any) (*http.Response, envelope) {
	c.t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.server.URL+"/api/v1/attendance"+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari/604.1")
	if c.device != "" {
		req.Header.Set("X-Device-Id", c.device)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	var payload envelope
	decodeJSON(c.t, res, &payload)
	return res, payload
}

func signToken(t *testing.T, claims auth.ClaimsData) string {
	t.Helper()
	now := time.Now()
	claims.Issuer = testIssuer
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(time.Hour).Unix()
	token, err := auth.GenerateAuthToken(claims, testSecret)
	require.NoError(t, err)
	return *token
}

func attendanceServer(t *testing.T) *attendanceClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewTokenVerifier(testIssuer, testSecret, "")
	require.NoError(t, err)
	previousVerifier, previousService := auth.Verifier, attendance_usecases.Attendance
	auth.Verifier = verifier

	policy := verification.DefaultPolicy()
	policy.ChallengeWindow = 2 * time.Second
	policy.LocationTimeout = time.Second
	policy.StillTimeout = 2 * time.Second
	service := attendance_usecases.NewService(&verification.Orchestrator{
		Policy:      policy,
		Faces:       shadeFaces{string(pngOf(10)): embedding(0.05), string(pngOf(120)): embedding(0.9)},
		Enrollments: enrolledFaces{"emp-1": embedding(0)},
	}, offices{"hq": {ID: "hq", Name: "HQ", Latitude: -6.2, Longitude: 106.8166, RadiusMeters: 100, IsActive: true}}, nil, time.Minute)
	attendance_usecases.Attendance = service
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		service.Shutdown(ctx)
		auth.Verifier, attendance_usecases.Attendance = previousVerifier, previousService
	})

	engine := gin.New()
	api := engine.Group("/api")
	api.Use(middlewares.UserAgentMiddleware())
	AttendanceRouter(api.Group("/v1"))
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return &attendanceClient{
		t:      t,
		server: server,
		token:  signToken(t, auth.ClaimsData{UserID: "emp-1", OfficeID: "hq", TokenID: "tok-1"}),
		device: "device-1",
	}
}

func recordedBody(still []byte, latitude float64) map[string]any {
	return map[string]any{
		"workMode":  "wfo",
		"frames":    blinkFrames("ooccoo"),
		"stills":    []string{encoded(still)},
		"locations": []map[string]any{{"latitude": latitude, "longitude": 106.8166, "accuracyMeters": 5}},
	}
}

func TestAttendanceRoutes_RequireHeadersAndToken(t *testing.T) {
	client := attendanceServer(t)

	anonymous := *client
	anonymous.token = ""
	res, _ := anonymous.do(http.MethodPost, "/verify", recordedBody(pngOf(10), -6.2))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	deviceless := *client
	deviceless.device = ""
	res, _ = deviceless.do(http.MethodPost, "/verify", recordedBody(pngOf(10), -6.2))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	forged := *client
	forged.token = client.token + "x"
	res, _ = forged.do(http.MethodPost, "/verify", recordedBody(pngOf(10), -6.2))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	bound := *client
	bound.token = signToken(t, auth.ClaimsData{UserID: "emp-1", DeviceID: "device-9"})
	res, _ = bound.do(http.MethodPost, "/verify", recordedBody(pngOf(10), -6.2))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAttendanceRoutes_VerifyRecorded(t *testing.T) {
	client := attendanceServer(t)

	res, payload := client.do(http.MethodPost, "/verify", recordedBody(pngOf(10), -6.2))
	require.Equal(t, http.StatusOK, res.StatusCode, payload.Message)
	require.NotNil(t, payload.ResponseCode)
	assert.Equal(t, uint(constants.ATTENDANCE_ACCEPTED), *payload.ResponseCode)
	var decision verification.Decision
	require.NoError(t, json.Unmarshal(payload.Body, &decision))
	assert.Equal(t, verification.Accepted, decision.Outcome)
	assert.Equal(t, "hq", decision.OfficeID)

	res, payload = client.do(http.MethodPost, "/verify", recordedBody(pngOf(10), -6.3))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, uint(constants.ATTENDANCE_REJECTED), *payload.ResponseCode)
	require.NoError(t, json.Unmarshal(payload.Body, &decision))
	assert.Equal(t, verification.ReasonOutsideGeofence, decision.ReasonCode)

	res, _ = client.do(http.MethodPost, "/verify", map[string]any{"workMode": "wfo", "officeId": "branch", "frames": blinkFrames("ooccoo"), "stills": []string{encoded(pngOf(10))}, "locations": []map[string]any{{"error": "timeout"}}})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = client.do(http.MethodPost, "/verify", map[string]any{"workMode": "remote"})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestAttendanceRoutes_PushedAttempt(t *testing.T) {
	client := attendanceServer(t)

	res, payload := client.do(http.MethodPost, "/attempts", map[string]any{"sessionId": "kiosk-1", "workMode": "wfo"})
	require.Equal(t, http.StatusCreated, res.StatusCode, payload.Message)
	var status attendance_usecases.AttemptStatus
	require.NoError(t, json.Unmarshal(payload.Body, &status))
	require.NotEmpty(t, status.ID)

	res, _ = client.do(http.MethodPost, "/attempts/"+status.ID+"/frames", map[string]any{"frames": blinkFrames("oocco")})
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	res, _ = client.do(http.MethodPost, "/attempts/"+status.ID+"/still", map[string]any{"image": encoded(pngOf(10))})
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	res, _ = client.do(http.MethodPost, "/attempts/"+status.ID+"/location", map[string]any{"latitude": -6.2, "longitude": 106.8166, "accuracyMeters": 4})
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	require.Eventually(t, func() bool {
		res, payload := client.do(http.MethodGet, "/attempts/"+status.ID, nil)
		if res.StatusCode != http.StatusOK {
			return false
		}
		var current attendance_usecases.AttemptStatus
		if json.Unmarshal(payload.Body, &current) != nil || current.Decision == nil {
			return false
		}
		status = current
		return true
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, verification.Accepted, status.Decision.Outcome)
	assert.Equal(t, 1, status.Decision.BlinkCount)

	res, _ = client.do(http.MethodPost, "/attempts/"+status.ID+"/frames", map[string]any{"frames": blinkFrames("o")})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	other := *client
	other.token = signToken(t, auth.ClaimsData{UserID: "emp-2"})
	res, _ = other.do(http.MethodGet, "/attempts/"+status.ID, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestAttendanceRoutes_CancelAttempt(t *testing.T) {
	client := attendanceServer(t)

	res, payload := client.do(http.MethodPost, "/attempts", map[string]any{"sessionId": "kiosk-2", "workMode": "wfh"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var status attendance_usecases.AttemptStatus
	require.NoError(t, json.Unmarshal(payload.Body, &status))

	res, payload = client.do(http.MethodDelete, "/attempts/"+status.ID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, uint(constants.ATTEMPT_CANCELED), *payload.ResponseCode)
	require.NoError(t, json.Unmarshal(payload.Body, &status))
	assert.Equal(t, verification.StateCanceled, status.State)
	assert.Nil(t, status.Decision)

	res, _ = client.do(http.MethodDelete, "/attempts/unknown", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
