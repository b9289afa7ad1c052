package emails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSpoofAlert(t *testing.T) {
	html := renderTemplate("spoof_alert", map[string]any{
		"UserID":     "user-1",
		"OfficeName": "Head office",
		"AttemptID":  "01HX",
		"Latitude":   -6.2,
		"Longitude":  106.8,
	})
	require.NotNil(t, html)
	assert.Contains(t, *html, "user-1")
	assert.Contains(t, *html, "Head office")
	assert.Contains(t, *html, "-6.2, 106.8")
}

func TestRenderMissingTemplate(t *testing.T) {
	assert.Nil(t, renderTemplate("welcome", nil))
}

func TestSendEmailWithoutKey(t *testing.T) {
	t.Setenv("RESEND_API_KEY", "")
	assert.False(t, (&ResendService{}).SendEmail("a@b.c", "subject", "spoof_alert", nil))
}
