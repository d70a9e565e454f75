package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargecast/infra/history"
)

func writeDemand(t *testing.T, days int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Demand\n")
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		fmt.Fprintf(&b, "%s,100\n", start.AddDate(0, 0, i).Format(time.DateOnly))
	}
	path := filepath.Join(t.TempDir(), "charging_demand.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range []*pflag.FlagSet{rootCmd.PersistentFlags(), rootCmd.Flags(), historyLsCmd.Flags()} {
		c.VisitAll(reset)
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

func TestRootAndHistoryCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	t.Setenv("CC_HISTORY__PATH", dbPath)
	input := writeDemand(t, 120)

	out, err := execute(t, "-i", input, "-H", "3", "-f", "csv", "--history", "--log-level", "disabled")
	require.NoError(t, err)
	assert.Equal(t, "date,forecast,lower,upper", strings.SplitN(out, "\n", 2)[0])
	assert.Contains(t, out, "2023-05-01,100,100,100")

	out, err = execute(t, "history", "ls", "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "ARIMA(1,1,1)")

	store, err := history.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)

	out, err = execute(t, "history", "show", runs[0].ID, "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "2023-05-03    100.000000")

	_, err = execute(t, "history", "show", "missing", "--log-level", "disabled")
	assert.Error(t, err)
}

func TestRootCommand_Errors(t *testing.T) {
	_, err := execute(t, "-i", filepath.Join(t.TempDir(), "nope.csv"), "--log-level", "disabled")
	assert.Error(t, err)

	_, err = execute(t, "-c", "config.toml")
	assert.ErrorContains(t, err, "unsupported config format")
}
