package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateHelpers(t *testing.T) {
	now := time.Date(2024, 2, 29, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-02-29", FormatDate(now))
	assert.Equal(t, "2025-03-01", FormatDate(AddYears(now, 1)))
	assert.Equal(t, "2024-02-29T15:30:00Z", FormatTime(now))

	parsed, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now.Truncate(24*time.Hour)))

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "evidence/task-1/photo.jpg", JoinPath("/evidence/", "", "task-1", "photo.jpg"))
	assert.Equal(t, "", JoinPath("", "/"))
}

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, GenerateUUID())
}
