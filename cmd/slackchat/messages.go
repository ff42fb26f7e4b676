package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/edgard/slackchat/internal/database"
)

func messagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Inspect recorded messages",
	}
	cmd.AddCommand(messagesListCmd())
	return cmd
}

func messagesListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <channel-id>",
		Short: "List the most recent messages of a channel with their replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			db, store, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			return listMessages(cmd.Context(), cmd.OutOrStdout(), store, args[0], limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of messages to show")
	return cmd
}

func listMessages(ctx context.Context, out io.Writer, store database.Store, apiID string, limit int) error {
	channel, err := store.GetChannel(ctx, apiID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("channel %s is not provisioned", apiID)
		}
		return err
	}

	messages, err := store.ListMessages(ctx, channel, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tTEXT")
	for i := range messages {
		msg := &messages[i]
		fmt.Fprintf(w, "%s\t%s\n", msg.Timestamp, msg.Text)

		kwargs, err := store.ListKeywordArguments(ctx, msg)
		if err != nil {
			return err
		}
		for _, kw := range kwargs {
			fmt.Fprintf(w, "  %s\t%s: %s\n", kw.Timestamp, kw.Key, kw.Value)
		}
	}
	return w.Flush()
}
