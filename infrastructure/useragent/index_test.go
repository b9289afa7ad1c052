package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	ua := ParseUserAgent("Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.144 Mobile Safari/537.36")
	assert.Equal(t, "Chrome", ua.Name)
	assert.Equal(t, "Android", ua.OS)
	assert.True(t, ua.Mobile)
	assert.False(t, ua.Bot)
	assert.Contains(t, ua.Browser(), "Chrome 120")
}

func TestParseUserAgent_Empty(t *testing.T) {
	ua := ParseUserAgent("")
	assert.Equal(t, "", ua.Browser())
}
