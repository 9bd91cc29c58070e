package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [person_a] [person_b]",
		Short: "Print what person_b is to person_a",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			rel, err := a.client.Resolve(a.context(cmd), ids[0], ids[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, rel)
			}
			fmt.Fprintf(out, "%s (%s)\n", rel.Label, rel.Category)
			if rel.PathText != "" {
				fmt.Fprintf(out, "path: %s\n", rel.PathText)
			}
			return nil
		},
	}
}

func newGenerationCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generation [person_id]",
		Short: "Print a person's generation number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			gen, err := a.client.Generation(a.context(cmd), ids[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, map[string]any{"person_id": ids[0], "generation": gen})
			}
			if gen == nil {
				fmt.Fprintln(out, "unassigned")
				return nil
			}
			fmt.Fprintln(out, *gen)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print resolver cache and graph statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.client.Stats(a.context(cmd))
			if err != nil {
				return err
			}

			var doc any
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("failed to decode stats: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
}
