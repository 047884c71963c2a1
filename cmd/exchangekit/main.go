package main

import (
	"fmt"
	"os"

	"github.com/quaylabs/exchangekit/internal/crypto"
	"github.com/quaylabs/exchangekit/internal/exchange"
	"github.com/quaylabs/exchangekit/internal/logx"
	"github.com/quaylabs/exchangekit/internal/prefs"
	"github.com/quaylabs/exchangekit/internal/redact"
	"github.com/quaylabs/exchangekit/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "exchangekit",
		Short:   "Exchangekit - exchange widget OAuth and publisher record tooling",
		Version: version.Version,
	}
	rootCmd.SetVersionTemplate(version.String("exchangekit") + "\n")

	rootCmd.AddCommand(newAuthURLCmd())
	rootCmd.AddCommand(newExchangeCmd())
	rootCmd.AddCommand(newBalancesCmd())
	rootCmd.AddCommand(newTickerCmd())
	rootCmd.AddCommand(newRevokeCmd())
	rootCmd.AddCommand(newPublisherCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveClientID returns the OAuth client id from the flag or the
// EXCHANGEKIT_CLIENT_ID env var. Returns an error if neither is set.
func resolveClientID(cmd *cobra.Command, flagValue string) (string, error) {
	if cmd.Flags().Changed("client-id") {
		return flagValue, nil
	}
	if v := os.Getenv("EXCHANGEKIT_CLIENT_ID"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("client id required: use --client-id or set EXCHANGEKIT_CLIENT_ID")
}

// resolveSealSecret reads EXCHANGEKIT_SEAL_SECRET. The secret is never
// accepted as a flag so it cannot leak through process listings.
func resolveSealSecret() (string, error) {
	if v := os.Getenv("EXCHANGEKIT_SEAL_SECRET"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("seal secret required: set EXCHANGEKIT_SEAL_SECRET")
}

// openClient wires a fully configured exchange client over the local
// preference store, and routes log output through the token redaction writer.
// The returned cleanup releases the client and the preference store.
func openClient(cmd *cobra.Command, clientID, prefsPath, oauthHost, apiHost string) (*exchange.Client, func(), error) {
	id, err := resolveClientID(cmd, clientID)
	if err != nil {
		return nil, nil, err
	}
	secret, err := resolveSealSecret()
	if err != nil {
		return nil, nil, err
	}
	sealer, err := crypto.NewSealer(secret)
	if err != nil {
		return nil, nil, fmt.Errorf("init sealer: %w", err)
	}
	preferences, err := prefs.Open(prefsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open preferences: %w", err)
	}

	tokens := exchange.NewTokenStore(preferences, sealer)
	logx.SetOutput(redact.NewWriter(os.Stderr, []string{
		tokens.AccessToken(),
		tokens.RefreshToken(),
	}))

	cfg := exchange.DefaultConfig(id)
	if oauthHost != "" {
		cfg.OAuthHost = oauthHost
	}
	if apiHost != "" {
		cfg.APIHost = apiHost
	}

	client := exchange.NewClient(cfg, tokens)
	cleanup := func() {
		client.Close()
		preferences.Close()
	}
	return client, cleanup, nil
}

// addClientFlags registers the flags shared by every command that talks to
// the exchange.
func addClientFlags(cmd *cobra.Command, clientID, prefsPath, oauthHost, apiHost *string) {
	cmd.Flags().StringVar(clientID, "client-id", "", "OAuth client id (or set EXCHANGEKIT_CLIENT_ID)")
	cmd.Flags().StringVar(prefsPath, "prefs", "prefs.db", "Path to the preference database")
	cmd.Flags().StringVar(oauthHost, "oauth-host", "", "Exchange authentication host override")
	cmd.Flags().StringVar(apiHost, "api-host", "", "Exchange public API host override")
}
