package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Date,Station,Demand
2024-01-01,A,120.5
2024-01-02,A,130
2024-01-03,A,125.25
`

func TestLoadCSVFromReader(t *testing.T) {
	s, err := LoadCSVFromReader(strings.NewReader(sample), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Demand", s.Name)
	assert.Equal(t, []float64{120.5, 130, 125.25}, s.Values)
	require.Len(t, s.Dates, 3)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), s.Dates[2])
}

func TestLoadCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charging_demand.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	s, err := LoadCSV(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCSV_Empty(t *testing.T) {
	for name, data := range map[string]string{
		"empty":       "",
		"header only": "Date,Demand\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCSVFromReader(strings.NewReader(data), DefaultOptions())
			assert.ErrorIs(t, err, ErrNoObservations)
		})
	}
}

func TestLoadCSV_ParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		line   int
		column string
	}{
		{"non numeric", "Date,Demand\n2024-01-01,10\n2024-01-02,abc\n", 3, "Demand"},
		{"empty value", "Date,Demand\n2024-01-01,\n", 2, "Demand"},
		{"NA", "Date,Demand\n2024-01-01,NaN\n", 2, "Demand"},
		{"bad date", "Date,Demand\nyesterday,10\n", 2, "Date"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadCSVFromReader(strings.NewReader(c.data), DefaultOptions())
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, c.line, pe.Line)
			assert.Equal(t, c.column, pe.Column)
		})
	}
}

func TestLoadCSV_Columns(t *testing.T) {
	_, err := LoadCSVFromReader(strings.NewReader("Day,Demand\n2024-01-01,1\n"), DefaultOptions())
	assert.ErrorIs(t, err, ErrColumnNotFound)

	data := "\ufeffdate;demand\n01/02/2024;4\n"
	s, err := LoadCSVFromReader(strings.NewReader(data), Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.Dates[0])

	s, err = LoadCSVFromReader(strings.NewReader("ts,kwh\n02.01.2024,4\n"),
		Options{DateColumn: "ts", ValueColumn: "kwh", DateFormat: "02.01.2006", Name: "site"})
	require.NoError(t, err)
	assert.Equal(t, "site", s.Name)
	assert.Equal(t, time.January, s.Dates[0].Month())
}

func TestLoadCSV_RaggedRow(t *testing.T) {
	_, err := LoadCSVFromReader(strings.NewReader("Date,Demand\n2024-01-01,1,extra\n"), DefaultOptions())
	assert.Error(t, err)
}
