package envconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Fallback(t *testing.T) {
	t.Setenv("PULSE_TEST_VALUE", "")
	assert.Equal(t, "fallback", Get("PULSE_TEST_VALUE", "fallback"))

	t.Setenv("PULSE_TEST_VALUE", "set")
	assert.Equal(t, "set", Get("PULSE_TEST_VALUE", "fallback"))
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("PULSE_TEST_INT", "42")
	t.Setenv("PULSE_TEST_BOOL", "true")
	t.Setenv("PULSE_TEST_DURATION", "90s")

	n, err := GetInt("PULSE_TEST_INT", 1)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	b, err := GetBool("PULSE_TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	d, err := GetDuration("PULSE_TEST_DURATION", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	n, err = GetInt("PULSE_TEST_UNSET_INT", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	t.Setenv("PULSE_TEST_INT", "many")
	_, err = GetInt("PULSE_TEST_INT", 1)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PULSE_DOTENV_VALUE=from-file\n"), 0o600))
	t.Setenv("PULSE_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("PULSE_DOTENV_VALUE"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("PULSE_DOTENV_VALUE"))
}

func TestValidate(t *testing.T) {
	type sample struct {
		Name string `validate:"required"`
	}
	assert.Error(t, Validate(sample{}))
	assert.NoError(t, Validate(sample{Name: "ok"}))
}
