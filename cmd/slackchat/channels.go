package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	"github.com/edgard/slackchat/internal/database"
)

// ConversationInfoGetter looks channels up through the Slack Web API.
// *slack.Client satisfies it.
type ConversationInfoGetter interface {
	GetConversationInfoContext(ctx context.Context, input *slack.GetConversationInfoInput) (*slack.Channel, error)
}

func channelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Manage the channels whose events are recorded",
	}
	cmd.AddCommand(channelsAddCmd(), channelsListCmd(), channelsRemoveCmd())
	return cmd
}

func channelsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <channel-id> [name]",
		Short: "Provision a channel, looking its name up in Slack when omitted",
		Args:  cobra.RangeArgs(1, 2),
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

			var name string
			if len(args) == 2 {
				name = args[1]
			}

			var lookup ConversationInfoGetter
			if client := newSlackClient(cfg, log); client != nil {
				lookup = client
			}
			return addChannel(cmd.Context(), cmd.OutOrStdout(), store, lookup, args[0], name)
		},
	}
}

func addChannel(ctx context.Context, out io.Writer, store database.Store, lookup ConversationInfoGetter, apiID, name string) error {
	if name == "" && lookup != nil {
		info, err := lookup.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{ChannelID: apiID})
		if err != nil {
			return fmt.Errorf("failed to look up channel %s: %w", apiID, err)
		}
		name = info.Name
	}

	channel, err := store.CreateChannel(ctx, apiID, name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "channel %s (%s) provisioned\n", channel.APIID, channel.Name)
	return err
}

func channelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List provisioned channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			db, store, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			return listChannels(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
}

func listChannels(ctx context.Context, out io.Writer, store database.Store) error {
	channels, err := store.ListChannels(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, c := range channels {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.APIID, c.Name, c.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func channelsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <channel-id>",
		Short: "Remove a channel together with its messages and replies",
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

			if err := store.DeleteChannel(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("channel %s is not provisioned", args[0])
				}
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "channel %s removed\n", args[0])
			return err
		},
	}
}
