package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderTimeRoundTrip(t *testing.T) {
	MustInit("Asia/Shanghai")

	utc := time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC)
	s := FormatInBizTimezone(utc, ProviderLayout)
	assert.Equal(t, "2024-03-02 00:30:00", s)

	parsed, err := ParseProviderTime(s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(utc))
	assert.Equal(t, time.UTC, parsed.Location())
}

func TestParseProviderTime_Invalid(t *testing.T) {
	_, err := ParseProviderTime("2024/03/02")
	assert.Error(t, err)
}
