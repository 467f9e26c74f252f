package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lepto-risk-workers/internal/common/database"
	"lepto-risk-workers/internal/surveillance"
	qrr "lepto-risk-workers/internal/workers/data-access/query-risk-records"
)

const seedFile = `[
	{"year": 2015, "country": "Spain", "risk_percentage": 78.4, "risk_level": "Very High", "primary_factor": "Rainfall"},
	{"year": 2016, "country": "Spain", "risk_percentage": 61.0, "risk_level": "High"},
	{"year": 2015, "country": "France", "risk_percentage": 42.5, "risk_level": "Moderate"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestReadRecords(t *testing.T) {
	records, err := readRecords(writeFile(t, "records.json", seedFile), 3, false)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "France", records[2].Country)
	assert.InDelta(t, 42.5, records[2].Risk(), 0.001)
}

func TestReadRecords_Invalid(t *testing.T) {
	bad := `[{"year": 2015, "country": "Spain", "risk_percentage": 78.4}, {"year": 2015, "country": ""}]`
	path := writeFile(t, "bad.json", bad)

	_, err := readRecords(path, 3, false)
	assert.ErrorContains(t, err, "record 1")

	records, err := readRecords(path, 3, true)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReadRecords_NotAnArray(t *testing.T) {
	_, err := readRecords(writeFile(t, "obj.json", `{"year": 2015}`), 3, false)
	assert.Error(t, err)
}

func TestSeedThenQuery_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lepto.db")
	records := writeFile(t, "records.json", seedFile)

	require.NoError(t, run(t, "--sqlite", dbPath, "seed", records))

	db, err := database.OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()
	countries, err := qrr.NewSQLiteSource(db).Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"France", "Spain"}, countries)

	assert.NoError(t, run(t, "--sqlite", dbPath, "query", "Compare Spain and France in 2015"))
	assert.NoError(t, run(t, "--sqlite", dbPath, "compare", "Spain", "--year", "2016"))
	assert.NoError(t, run(t, "--sqlite", dbPath, "--json", "countries"))
	assert.NoError(t, run(t, "--sqlite", dbPath, "chat", "What about Spain?"))
}

func TestCompare_RejectsUnknownCountry(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lepto.db")
	// invalid selections are user-facing and printed, not returned
	assert.NoError(t, run(t, "--sqlite", dbPath, "compare", "Atlantis"))
}

func TestRegistryCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	assert.NoError(t, run(t, "registry", "list", "--path", path))
	assert.Error(t, run(t, "registry", "validate", "--path", path))

	vars := writeFile(t, "vars.json", `{"message": "Spain in 2015"}`)
	assert.NoError(t, run(t, "registry", "check", "extract-entities", vars, "--path", path))
	assert.Error(t, run(t, "registry", "check", "no-such-task", vars, "--path", path))
}

const surveillanceFile = `[
	{"year": 2010, "country_code": "FR", "country_name": "France", "leptospirosis_rate": 0.9, "relative_humidity": 78.5},
	{"year": 2011, "country_code": "FR", "country_name": "France", "leptospirosis_rate": 1.2},
	{"year": 2010, "country_code": "ES", "country_name": "Spain", "leptospirosis_rate": null}
]`

func TestReadSurveillance_Invalid(t *testing.T) {
	bad := `[{"year": 2010, "country_code": "FR", "country_name": "France"}, {"year": 2010, "country_code": "france", "country_name": "France"}]`
	path := writeFile(t, "bad.json", bad)

	_, err := readSurveillance(path, 3, false)
	assert.ErrorContains(t, err, "record 1")

	records, err := readSurveillance(path, 3, true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].LeptospirosisRate)
}

func TestSurveillanceSeedThenBrowse_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lepto.db")
	rows := writeFile(t, "surveillance.json", surveillanceFile)

	require.NoError(t, run(t, "--sqlite", dbPath, "surveillance", "seed", rows))

	db, err := database.OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()
	stored, err := surveillance.NewSQLiteStore(db).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "ES", stored[0].CountryCode)

	assert.NoError(t, run(t, "--sqlite", dbPath, "surveillance", "table", "--search", "fra", "--sort", "leptospirosis_rate", "--desc"))
	assert.NoError(t, run(t, "--sqlite", dbPath, "--json", "surveillance", "map", "--year", "2011"))
	assert.NoError(t, run(t, "--sqlite", dbPath, "surveillance", "series", "fr"))

	assert.Error(t, run(t, "--sqlite", dbPath, "surveillance", "table", "--sort", "population"))
	assert.Error(t, run(t, "--sqlite", dbPath, "surveillance", "series", "DE"))
}
