package cli

import (
	"context"
	"fmt"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/spf13/cobra"
)

func newNotifyCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Manage push-notification subscriptions (requires login)",
	}

	var endpoint, p256dh, auth string

	subscribe := &cobra.Command{
		Use:   "subscribe",
		Short: "Register a push subscription",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			sub := api.Subscription{
				Endpoint: endpoint,
				Keys:     api.SubscriptionKeys{P256dh: p256dh, Auth: auth},
			}
			if err := app.Notify.Subscribe(ctx, sub); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Subscribed.")
			return nil
		}),
	}
	subscribe.Flags().StringVar(&endpoint, "endpoint", "", "push service endpoint URL")
	subscribe.Flags().StringVar(&p256dh, "p256dh", "", "client public key")
	subscribe.Flags().StringVar(&auth, "auth", "", "client auth secret")
	_ = subscribe.MarkFlagRequired("endpoint")
	_ = subscribe.MarkFlagRequired("p256dh")
	_ = subscribe.MarkFlagRequired("auth")

	var unsubEndpoint string
	unsubscribe := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Remove a push subscription",
		RunE: withApp(opts, func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if err := app.Notify.Unsubscribe(ctx, unsubEndpoint); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Unsubscribed.")
			return nil
		}),
	}
	unsubscribe.Flags().StringVar(&unsubEndpoint, "endpoint", "", "push service endpoint URL")
	_ = unsubscribe.MarkFlagRequired("endpoint")

	cmd.AddCommand(subscribe, unsubscribe)
	return cmd
}
