package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	original := Cursor{
		CreatedAt: time.Date(2026, 3, 10, 12, 30, 45, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	decoded, err := DecodeCursor(original.Encode())
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, original.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, original.ID, decoded.ID)
}

func TestDecodeCursorEmptyMeansFirstPage(t *testing.T) {
	t.Parallel()

	decoded, err := DecodeCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, token := range []string{
		"not-base64!",
		"bm8tc2VwYXJhdG9y",
		"YWJjOm5vdC1hLXV1aWQ",
	} {
		_, err := DecodeCursor(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestNormalizeLimitBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 11, PeekLimit(10))
}
