package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mruput.io/application/services/verification"
	"mruput.io/infrastructure/biometric"
	"mruput.io/infrastructure/biometric/liveness"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/recordsink"
)

func pngOf(shade uint8) []byte {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			img.SetGray(x, y, color.Gray{Y: shade})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func embedding(offset float32) types.FaceEmbedding {
	e := make(types.FaceEmbedding, types.EmbeddingLength)
	for i := range e {
		e[i] = 0.5
	}
	e[0] += offset
	return e
}

// shadeFaces recognises the stills by their bytes.
type shadeFaces map[string]types.FaceEmbedding

func (f shadeFaces) Enroll(ctx context.Context, image []byte) (types.FaceEmbedding, error) {
	e, ok := f[string(image)]
	if !ok {
		return nil, types.ErrNoFaceDetected
	}
	return e, nil
}

func (f shadeFaces) Verify(ctx context.Context, image []byte, enrolled types.FaceEmbedding, threshold float64) (*types.VerifyResult, error) {
	candidate, err := f.Enroll(ctx, image)
	if err != nil {
		return nil, err
	}
	result, err := biometric.Match(candidate, enrolled, threshold)
	if err != nil {
		return nil, err
	}
	return &types.VerifyResult{SimilarityResult: *result}, nil
}

func frames(pattern string) []liveness.Frame {
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

func replayJSON(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	body := map[string]any{
		"userId": "emp-7",
		"office": map[string]any{
			"id": "hq", "name": "HQ", "latitude": -6.2, "longitude": 106.8166, "radiusMeters": 100, "isActive": true,
		},
		"enrollmentImage": base64.StdEncoding.EncodeToString(pngOf(10)),
		"workMode":        "wfo",
		"frames":          frames("ooccoo"),
		"stills":          []string{base64.StdEncoding.EncodeToString(pngOf(10))},
		"locations":       []map[string]any{{"latitude": -6.2, "longitude": 106.8166, "accuracyMeters": 5}},
	}
	for k, v := range fields {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func testPolicy() verification.Policy {
	policy := verification.DefaultPolicy()
	policy.ChallengeWindow = 2 * time.Second
	policy.LocationTimeout = time.Second
	policy.StillTimeout = time.Second
	return policy
}

func TestParseReplayFile(t *testing.T) {
	file, err := parseReplayFile(replayJSON(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "emp-7", file.UserID)
	assert.Equal(t, "hq", file.Office.ID)
	assert.Len(t, file.Frames, 6)

	_, err = parseReplayFile(replayJSON(t, map[string]any{"workMode": "remote"}))
	assert.Error(t, err)

	_, err = parseReplayFile(replayJSON(t, map[string]any{"enrollmentImage": ""}))
	assert.Error(t, err, "a reference face is required")

	_, err = parseReplayFile([]byte("{"))
	assert.Error(t, err)
}

func TestReplay_RecordsToJournal(t *testing.T) {
	faces := shadeFaces{string(pngOf(10)): embedding(0), string(pngOf(200)): embedding(0.9)}
	journal, err := recordsink.OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	file, err := parseReplayFile(replayJSON(t, nil))
	require.NoError(t, err)
	decision, err := replay(context.Background(), file, faces, testPolicy(), journal)
	require.NoError(t, err)
	assert.Equal(t, verification.Accepted, decision.Outcome)
	assert.Equal(t, "hq", decision.OfficeID)

	file, err = parseReplayFile(replayJSON(t, map[string]any{
		"stills": []string{base64.StdEncoding.EncodeToString(pngOf(200))},
	}))
	require.NoError(t, err)
	decision, err = replay(context.Background(), file, faces, testPolicy(), journal)
	require.NoError(t, err)
	assert.Equal(t, verification.Rejected, decision.Outcome)
	assert.Equal(t, verification.ReasonIdentityMismatch, decision.ReasonCode)

	records, err := journal.List(context.Background(), "emp-7")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReplay_UnknownOffice(t *testing.T) {
	file, err := parseReplayFile(replayJSON(t, map[string]any{"officeId": "branch"}))
	require.NoError(t, err)
	_, err = replay(context.Background(), file, shadeFaces{string(pngOf(10)): embedding(0)}, testPolicy(), nil)
	assert.Error(t, err)
}

func TestPolicyCommand(t *testing.T) {
	t.Setenv("POLICY_FILE", "")
	t.Setenv("POLICY_MATCH_THRESHOLD", "0.45")
	cmd := newPolicyCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"matchThreshold": 0.45`)

	t.Setenv("POLICY_MATCH_THRESHOLD", "5")
	cmd = newPolicyCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--check"})
	assert.Error(t, cmd.Execute())
}
