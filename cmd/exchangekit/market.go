package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newBalancesCmd() *cobra.Command {
	var (
		clientID  string
		prefsPath string
		oauthHost string
		apiHost   string
	)

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Print account balances for the connected exchange account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := openClient(cmd, clientID, prefsPath, oauthHost, apiHost)
			if err != nil {
				return err
			}
			defer cleanup()

			type result struct {
				balances map[string]string
				ok       bool
			}
			done := make(chan result, 1)
			client.GetAccountBalances(func(balances map[string]string, ok bool) {
				done <- result{balances, ok}
			})
			res := <-done
			if !res.ok {
				return fmt.Errorf("balance request rejected by the exchange")
			}

			assets := make([]string, 0, len(res.balances))
			for asset := range res.balances {
				assets = append(assets, asset)
			}
			sort.Strings(assets)
			for _, asset := range assets {
				fmt.Printf("%s\t%s\n", asset, res.balances[asset])
			}
			return nil
		},
	}

	addClientFlags(cmd, &clientID, &prefsPath, &oauthHost, &apiHost)
	return cmd
}

func newTickerCmd() *cobra.Command {
	var (
		clientID  string
		prefsPath string
		oauthHost string
		apiHost   string
		volume    bool
	)

	cmd := &cobra.Command{
		Use:   "ticker <pair>",
		Short: "Print the spot price (or 24h volume) for a symbol pair",
		Long: `Fetch the current ticker price for a symbol pair such as BTCUSDT.
With --volume, print the 24 hour traded volume instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := openClient(cmd, clientID, prefsPath, oauthHost, apiHost)
			if err != nil {
				return err
			}
			defer cleanup()

			done := make(chan string, 1)
			if volume {
				client.GetTickerVolume(args[0], func(v string) { done <- v })
			} else {
				client.GetTickerPrice(args[0], func(p string) { done <- p })
			}
			fmt.Println(<-done)
			return nil
		},
	}

	addClientFlags(cmd, &clientID, &prefsPath, &oauthHost, &apiHost)
	cmd.Flags().BoolVar(&volume, "volume", false, "Print 24h volume instead of price")
	return cmd
}
