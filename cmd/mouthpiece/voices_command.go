package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List voices offered by the TTS service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.speechClient(cfg)
			if err != nil {
				return err
			}
			voices, err := client.ListVoices(cmd.Context())
			if err != nil {
				return err
			}
			sort.Slice(voices, func(i, j int) bool {
				return strings.ToLower(voices[i].Name) < strings.ToLower(voices[j].Name)
			})
			if ctx.JSONMode() {
				return writeJSON(cmd, voices)
			}
			out := cmd.OutOrStdout()
			if len(voices) == 0 {
				fmt.Fprintln(out, "No voices available")
				return nil
			}
			rows := make([][]string, 0, len(voices))
			for _, v := range voices {
				marker := ""
				if v.ID == cfg.TTS.VoiceID {
					marker = "*"
				}
				rows = append(rows, []string{marker, v.Name, v.ID, v.Category, labelSummary(v.Labels)})
			}
			fmt.Fprint(out, renderTable([]column{
				{Header: ""}, {Header: "Name"}, {Header: "ID"}, {Header: "Category"}, {Header: "Labels"},
			}, rows))
			return nil
		},
	}
}

func labelSummary(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ", ")
}
