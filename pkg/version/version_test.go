package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer("1.10.0", "1.9.3"))
	assert.True(t, IsNewer("2.0.0", "1.99.99"))
	assert.True(t, IsNewer("v1.2.4", "1.2.3-dirty"))
	assert.False(t, IsNewer("1.2.3", "1.2.3"))
	assert.False(t, IsNewer("1.2.2", "1.2.3"))
}

func TestLatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v1.4.0"}`))
	}))
	defer srv.Close()

	latest, err := LatestRelease(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", latest)
}

func TestLatestRelease_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := LatestRelease(context.Background(), srv.Client(), srv.URL)
	assert.Error(t, err)
}

func TestFormatVersion(t *testing.T) {
	oldVersion, oldCommit, oldBuild := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = oldVersion, oldCommit, oldBuild }()

	Version, Commit, BuildTime = "1.2.3", "", ""
	assert.Equal(t, "1.2.3 (development)", FormatVersion())

	Commit, BuildTime = "abc1234", "2025-10-23T10:20:30Z"
	assert.Equal(t, "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)", FormatVersion())
}
