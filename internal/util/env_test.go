package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("MS_TEST_STRING", "value")
	t.Setenv("MS_TEST_BLANK", "  ")
	t.Setenv("MS_TEST_INT", " 42 ")
	t.Setenv("MS_TEST_BAD_INT", "forty")
	t.Setenv("MS_TEST_BOOL", "1")
	t.Setenv("MS_TEST_BAD_BOOL", "yes")

	assert.Equal(t, "value", GetEnv("MS_TEST_STRING"))
	assert.Equal(t, "", GetEnv("MS_TEST_UNSET"))
	assert.Equal(t, "fallback", GetEnvString("MS_TEST_BLANK", "fallback"))
	assert.Equal(t, "value", GetEnvString("MS_TEST_STRING", "fallback"))

	assert.Equal(t, 42, GetEnvInt("MS_TEST_INT", 7))
	assert.Equal(t, 7, GetEnvInt("MS_TEST_BAD_INT", 7))
	assert.Equal(t, 42*time.Second, GetEnvSeconds("MS_TEST_INT", time.Minute))
	assert.Equal(t, time.Minute, GetEnvSeconds("MS_TEST_UNSET", time.Minute))

	assert.True(t, GetEnvBool("MS_TEST_BOOL", false))
	assert.True(t, GetEnvBool("MS_TEST_BAD_BOOL", true))
	assert.False(t, GetEnvBool("MS_TEST_UNSET", false))
}
