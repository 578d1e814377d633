package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, TransportLocal, Transport())
	assert.Equal(t, http.SameSiteLaxMode, CookieSameSite())
	assert.Equal(t, 48*time.Hour, SessionActiveExpiration())
	assert.Equal(t, int32(1000), ContentSafeCredit())
	assert.Equal(t, int64(2), MaxPendingAwardApplications())
	assert.Equal(t, int64(3), MaxFutureSchedules())
	assert.Equal(t, "suihei:change-events", StreamKey())
	assert.Equal(t, "@hourly", DazeSchedule())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "suihei.env")
	err := os.WriteFile(envFile, []byte("SUIHEI_WIKI_DIR=/srv/wiki\nSUIHEI_VOTE_PUZZLES=9\n"), 0o600)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.Unsetenv("SUIHEI_WIKI_DIR")
		os.Unsetenv("SUIHEI_VOTE_PUZZLES")
	})

	err = Load([]string{"--port=9000", "--transport=redis", "--env-file", envFile})
	require.NoError(t, err)

	assert.Equal(t, 9000, Port())
	assert.Equal(t, TransportRedis, Transport())
	assert.Equal(t, "/srv/wiki", WikiDir())
	assert.Equal(t, int64(9), VotePuzzles())
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]struct {
		args []string
	}{
		"unknown flag":     {args: []string{"--nope"}},
		"missing env file": {args: []string{"--env-file", "/does/not/exist.env"}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := Load(test.args)
			assert.Error(t, err)
		})
	}
}

func TestCookieSameSite(t *testing.T) {
	tests := map[string]struct {
		value string
		exp   http.SameSite
	}{
		"off":    {value: "off", exp: http.SameSiteDefaultMode},
		"lax":    {value: "lax", exp: http.SameSiteLaxMode},
		"strict": {value: "strict", exp: http.SameSiteStrictMode},
		"none":   {value: "none", exp: http.SameSiteNoneMode},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("SUIHEI_COOKIE_SAMESITE", test.value)
			assert.Equal(t, test.exp, CookieSameSite())
		})
	}

	t.Run("unrecognized", func(t *testing.T) {
		t.Setenv("SUIHEI_COOKIE_SAMESITE", "sometimes")
		assert.Panics(t, func() { CookieSameSite() })
	})
}
