package flatfiles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalName(t *testing.T) {
	assert.Equal(t, "us_stocks_sip_day_aggs_v1_2024-06-03.csv.gz", LocalName("us_stocks_sip/day_aggs_v1/2024/06/2024-06-03.csv.gz"))
	assert.Equal(t, "a_b_c", LocalName("a/b/c"))
	assert.Equal(t, "a_b_z", LocalName("a/b/x/y/z"))
	assert.Equal(t, "a/b", LocalName("a/b"))
	assert.Equal(t, "file.csv.gz", LocalName("file.csv.gz"))
	assert.Equal(t, "", LocalName("  "))
}

func TestMatcher(t *testing.T) {
	cutoff := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	m, err := NewMatcher([]string{"us_stocks_sip/day_aggs_v1", "us_options_opra/day_aggs_v1"}, cutoff)
	require.NoError(t, err)

	d, ok := m.Match("us_options_opra/day_aggs_v1/2024/01/2024-01-02.csv.gz")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), d)

	_, ok = m.Match("us_stocks_sip/day_aggs_v1/2023/06/2023-06-01.csv.gz")
	assert.False(t, ok, "date equal to cutoff is out of scope")

	_, ok = m.Match("us_stocks_sip/minute_aggs_v1/2024/01/2024-01-02.csv.gz")
	assert.False(t, ok)

	_, ok = m.Match("us_stocks_sip/day_aggs_v1/2024/01/2024-13-40.csv.gz")
	assert.False(t, ok)

	_, err = NewMatcher([]string{"bad("}, cutoff)
	assert.Error(t, err)
}
