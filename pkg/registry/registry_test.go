package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg := Default()
	require.NoError(t, reg.Validate())
	assert.Equal(t, []string{
		"extract-entities", "classify-query", "query-risk-records", "build-series",
		"compute-statistics", "build-report", "notify-risk-alert",
	}, reg.TaskTypes())

	a, ok := reg.Find("notify-risk-alert")
	require.True(t, ok)
	assert.Equal(t, 15*time.Second, a.TimeoutDuration(time.Second))
	assert.Equal(t, 3, a.Retries)

	_, ok = reg.Find("email-send")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{"empty", ActivityRegistry{}, "no activities"},
		{"missing id", ActivityRegistry{Activities: []Activity{{DisplayName: "x"}}}, "ID"},
		{
			"duplicate",
			ActivityRegistry{Activities: []Activity{
				{ID: "a", DisplayName: "A", TaskType: "a", Category: "c"},
				{ID: "a", DisplayName: "A", TaskType: "a", Category: "c"},
			}},
			"duplicate",
		},
		{
			"bad status",
			ActivityRegistry{Activities: []Activity{{ID: "a", DisplayName: "A", TaskType: "a", Category: "c", ImplementationStatus: "done"}}},
			"status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateInput(t *testing.T) {
	reg := Default()

	assert.NoError(t, reg.ValidateInput("extract-entities", []byte(`{"message":"Germany 2015"}`)))
	assert.Error(t, reg.ValidateInput("extract-entities", []byte(`{"message":""}`)))
	assert.Error(t, reg.ValidateInput("build-series", []byte(`{"records":[],"mode":"weekly","countries":["France"]}`)))
	assert.Error(t, reg.ValidateInput("unknown", []byte(`{}`)))
}

func TestAddUpdateSaveLoad(t *testing.T) {
	reg := Default()

	require.NoError(t, reg.Add(Activity{ID: "export-csv", DisplayName: "Export CSV", TaskType: "export-csv", Category: "infrastructure"}))
	assert.Error(t, reg.Add(Activity{ID: "export-csv"}))

	require.NoError(t, reg.Update("export-csv", "status", "planned"))
	require.NoError(t, reg.Update("export-csv", "retries", "2"))
	assert.Error(t, reg.Update("export-csv", "retries", "two"))
	assert.Error(t, reg.Update("export-csv", "color", "red"))
	assert.Error(t, reg.Update("missing", "status", "planned"))

	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	a, ok := loaded.Find("export-csv")
	require.True(t, ok)
	assert.Equal(t, 2, a.Retries)
	assert.Equal(t, "planned", a.ImplementationStatus)
}

func TestLoadOrDefault(t *testing.T) {
	reg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 7)
}
