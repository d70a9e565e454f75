package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kilianp07/chargecast/infra/history"
	"github.com/kilianp07/chargecast/pkg/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded forecast runs",
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded runs, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryLs,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a recorded forecast",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyLsCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs, 0 for all")
	historyCmd.AddCommand(historyLsCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.SQLiteStore, error) {
	path := cfg.History.Path
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no history at %s: %w", path, err)
	}
	return history.NewSQLiteStore(path)
}

func runHistoryLs(cmd *cobra.Command, _ []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	runs, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	defer func() { _ = table.Close() }()
	table.Header([]string{"Run", "Created", "Series", "Engine", "Horizon", "AIC"})
	data := make([][]string, 0, len(runs))
	for _, r := range runs {
		data = append(data, []string{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Series,
			r.Engine,
			strconv.Itoa(r.Horizon),
			strconv.FormatFloat(r.AIC, 'f', 2, 64),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	f, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	title := fmt.Sprintf("Run %s (%s, %s):", f.RunID, f.Engine, f.CreatedAt.Format("2006-01-02 15:04:05"))
	return report.Write(cmd.OutOrStdout(), f, report.Options{
		Format: cfg.Output.Format,
		Title:  title,
		Color:  cfg.Output.Color,
	})
}
