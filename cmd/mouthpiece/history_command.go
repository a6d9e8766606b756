package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mouthpiece/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				entries, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if entries == nil {
						entries = []history.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprint(out, renderTable(historyColumns, historyRows(entries)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of runs to show")
	return cmd
}

var historyColumns = []column{
	{Header: "Started"},
	{Header: "Name"},
	{Header: "Outcome"},
	{Header: "Cues", Right: true},
	{Header: "Audio", Right: true},
	{Header: "Took", Right: true},
	{Header: "Delivered"},
	{Header: "Detail"},
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := fmt.Sprintf("%s/%s", e.Format, e.Recognizer)
		if e.Outcome == history.OutcomeFailed {
			detail = fmt.Sprintf("%s: %s", e.FailedStage, e.ErrorKind)
		}
		rows = append(rows, []string{
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Name,
			e.Outcome,
			strconv.Itoa(e.CueCount),
			fmt.Sprintf("%.2fs", e.Duration),
			e.Elapsed.Round(10 * time.Millisecond).String(),
			yesNo(e.Delivered),
			detail,
		})
	}
	return rows
}
