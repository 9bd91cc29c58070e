package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juruladenbam/bam-sub001/common/events"
)

func newMutateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mutate [person_id...]",
		Short: "Call the graph mutation hook for the given persons",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			resp, err := a.client.NotifyMutation(a.context(cmd), ids)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, resp)
			}
			fmt.Fprintf(out, "invalidated %d cached relationships, %d generations changed\n",
				resp.InvalidatedRows, resp.GenerationsChanged)
			return nil
		},
	}
}

func newRecomputeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Recompute every generation number from the root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.RecomputeGenerations(a.context(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, resp)
			}
			fmt.Fprintf(out, "root %d: %d assigned, %d changed", resp.RootID, resp.Assigned, resp.Changed)
			if !resp.Persisted {
				fmt.Fprint(out, " (not persisted)")
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newNotifyCmd(a *app) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "notify [person_id...]",
		Short: "Publish a graph mutation event on Redis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pub, closeFn, err := a.dialPublisher(ctx, a.log)
			if err != nil {
				return err
			}
			defer closeFn()

			ev, err := events.PublishGraphMutation(ctx, pub, a.channel, source, ids)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, ev)
			}
			fmt.Fprintf(out, "published %s on %s (%d persons)\n", ev.EventID, a.channel, len(ev.PersonIDs))
			return nil
		},
	}

	cmd.Flags().StringVar(&a.channel, "channel", events.DefaultMutationChannel, "pub/sub channel")
	cmd.Flags().StringVar(&source, "source", "kinshipctl", "source recorded on the event")
	return cmd
}
