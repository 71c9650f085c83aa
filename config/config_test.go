package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORTFOLIO_TEST_KEY", "a=b")
	assert.Equal(t, "a=b", New()["PORTFOLIO_TEST_KEY"])
}

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":             "9090",
		"EMPTY":            "",
		"BAD_INT":          "ten",
		"SEED":             " true ",
		"TIMEOUT_SECONDS":  "15",
		"ACCEPTED_ORIGINS": "https://a.dev, ,https://b.dev ",
	}

	assert.Equal(t, "9090", GetString(c, "PORT", "8080"))
	assert.Equal(t, "8080", GetString(c, "EMPTY", "8080"))
	assert.Equal(t, "x", GetString(nil, "PORT", "x"))

	assert.Equal(t, 9090, GetInt(c, "PORT", 1))
	assert.Equal(t, 1, GetInt(c, "BAD_INT", 1))
	assert.Equal(t, 1, GetInt(c, "MISSING", 1))

	assert.True(t, GetBool(c, "SEED", false))
	assert.True(t, GetBool(c, "BAD_INT", true))

	assert.Equal(t, 15*time.Second, GetSeconds(c, "TIMEOUT_SECONDS", 1))
	assert.Equal(t, 3*time.Second, GetSeconds(c, "MISSING", 3))

	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, GetList(c, "ACCEPTED_ORIGINS"))
	assert.Empty(t, GetList(c, "MISSING"))
}
