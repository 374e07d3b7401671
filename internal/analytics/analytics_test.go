package analytics

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/schedule/critical-path", nil)
	r.Header.Set("X-Platform", "Web")
	r.Header.Set("X-App-Version", "1.4.2")
	r.Header.Set("X-Session-Id", "s-123")
	r.Header.Set("Accept-Language", "ms-MY")

	env := FromRequest(r)
	assert.Equal(t, "web", env.Platform)
	assert.Equal(t, "1.4.2", env.AppVersion)
	assert.Equal(t, "s-123", env.SessionID)
	assert.Equal(t, "ms-MY", env.DeviceLocale)
}

func TestFromRequest_UnknownPlatform(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Platform", "blackberry")
	assert.Equal(t, "unknown", FromRequest(r).Platform)
}

func TestSourceEventKeyFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	assert.Empty(t, SourceEventKeyFromRequest(r))

	r.Header.Set("X-Source-Event-Key", "fallback")
	assert.Equal(t, "fallback", SourceEventKeyFromRequest(r))

	r.Header.Set("Idempotency-Key", "primary")
	assert.Equal(t, "primary", SourceEventKeyFromRequest(r))
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()
	_, ok := UserIDFromContext(ctx)
	assert.False(t, ok)

	ctx = WithUserID(ctx, 9)
	uid, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, 9, uid)
}

func TestFloatTier(t *testing.T) {
	assert.Equal(t, "critical", FloatTier(0))
	assert.Equal(t, "critical", FloatTier(-1))
	assert.Equal(t, "tight", FloatTier(3))
	assert.Equal(t, "comfortable", FloatTier(12))
}
