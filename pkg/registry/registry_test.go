package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestRegistry(t *testing.T) *ActivityRegistry {
	t.Helper()
	reg, err := LoadRegistry(filepath.Join(".", "activity-registry.json"))
	require.NoError(t, err)
	return reg
}

func TestLoadRegistry(t *testing.T) {
	reg := loadTestRegistry(t)

	assert.NotEmpty(t, reg.Version)
	require.Len(t, reg.Activities, 5)

	expected := []string{
		"recommend-by-query",
		"recommend-by-ingredients",
		"suggest-combos",
		"analyze-order-history",
		"track-combo-frequency",
	}
	for _, taskType := range expected {
		activity, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.Equal(t, "implemented", activity.ImplementationStatus)
		assert.NotEmpty(t, activity.InputSchema, taskType)
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestFind_UnknownTaskType(t *testing.T) {
	reg := loadTestRegistry(t)

	_, ok := reg.Find("no-such-task")
	assert.False(t, ok)
}

func TestValidateInput(t *testing.T) {
	reg := loadTestRegistry(t)

	tests := []struct {
		name      string
		taskType  string
		variables string
		wantErr   bool
	}{
		{
			name:      "query present",
			taskType:  "recommend-by-query",
			variables: `{"query":"high protein"}`,
		},
		{
			name:      "query missing",
			taskType:  "recommend-by-query",
			variables: `{"somethingElse":1}`,
			wantErr:   true,
		},
		{
			name:      "query empty",
			taskType:  "recommend-by-query",
			variables: `{"query":""}`,
			wantErr:   true,
		},
		{
			name:      "user id required",
			taskType:  "analyze-order-history",
			variables: `{"timeRange":"month"}`,
			wantErr:   true,
		},
		{
			name:      "time range enum enforced",
			taskType:  "analyze-order-history",
			variables: `{"userId":"0d1f7f6e-9f4a-4c3b-8f21-6a5d2e9b7c10","timeRange":"decade"}`,
			wantErr:   true,
		},
		{
			name:      "ingredients input is all optional",
			taskType:  "recommend-by-ingredients",
			variables: `{}`,
		},
		{
			name:      "order items must be strings",
			taskType:  "track-combo-frequency",
			variables: `{"orderItems":[1,2]}`,
			wantErr:   true,
		},
		{
			name:      "unknown task type validates vacuously",
			taskType:  "no-such-task",
			variables: `{"anything":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ValidateInput(tt.taskType, []byte(tt.variables))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
