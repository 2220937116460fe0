package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("0d1f7f6e-9f4a-4c3b-8f21-6a5d2e9b7c10"))
	assert.Error(t, ValidateUserID(""))
	assert.Error(t, ValidateUserID("   "))
	assert.Error(t, ValidateUserID("not-a-uuid"))
	assert.Error(t, ValidateUserID("0d1f7f6e-9f4a-4c3b-8f21"))
}

func TestValidateTimeRange(t *testing.T) {
	for _, ok := range []string{"", "week", "month", "year", "all"} {
		assert.NoError(t, ValidateTimeRange(ok), ok)
	}
	assert.Error(t, ValidateTimeRange("decade"))
	assert.Error(t, ValidateTimeRange("Week"))
}

func TestValidatePeriod(t *testing.T) {
	for _, ok := range []string{"", "day", "month"} {
		assert.NoError(t, ValidatePeriod(ok), ok)
	}
	assert.Error(t, ValidatePeriod("hour"))
}

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, 1, NormalizePage(0))
	assert.Equal(t, 1, NormalizePage(-5))
	assert.Equal(t, 1, NormalizePage(1))
	assert.Equal(t, 7, NormalizePage(7))
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 10, NormalizeLimit(0, 10, 100))
	assert.Equal(t, 1, NormalizeLimit(-3, 10, 100))
	assert.Equal(t, 100, NormalizeLimit(500, 10, 100))
	assert.Equal(t, 25, NormalizeLimit(25, 10, 100))
}
