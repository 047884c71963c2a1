package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthURLCmd() *cobra.Command {
	var (
		clientID  string
		prefsPath string
		oauthHost string
		apiHost   string
	)

	cmd := &cobra.Command{
		Use:   "auth-url",
		Short: "Print the OAuth authorization URL to open in a browser",
		Long: `Generate a fresh PKCE verifier pair and print the exchange authorization
URL. Paste the code from the redirect back into "exchangekit exchange <code>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := openClient(cmd, clientID, prefsPath, oauthHost, apiHost)
			if err != nil {
				return err
			}
			defer cleanup()

			url, err := client.AuthCodeURL()
			if err != nil {
				return fmt.Errorf("build authorization URL: %w", err)
			}
			fmt.Println(url)
			return nil
		},
	}

	addClientFlags(cmd, &clientID, &prefsPath, &oauthHost, &apiHost)
	return cmd
}

func newExchangeCmd() *cobra.Command {
	var (
		clientID  string
		prefsPath string
		oauthHost string
		apiHost   string
	)

	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Authorize interactively and exchange the code for tokens",
		Long: `Print the exchange authorization URL, wait for the authorization code from
the redirect on stdin, then swap it for an access/refresh token pair. The pair
is encrypted and persisted in the preference database.

The PKCE verifier only lives inside a single process, so the URL and the code
exchange have to happen in the same invocation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := openClient(cmd, clientID, prefsPath, oauthHost, apiHost)
			if err != nil {
				return err
			}
			defer cleanup()

			url, err := client.AuthCodeURL()
			if err != nil {
				return fmt.Errorf("build authorization URL: %w", err)
			}
			fmt.Printf("Open this URL in a browser and authorize:\n\n  %s\n\n", url)
			fmt.Print("Paste the authorization code: ")

			var code string
			if _, err := fmt.Fscanln(cmd.InOrStdin(), &code); err != nil {
				return fmt.Errorf("read authorization code: %w", err)
			}
			client.SetAuthCode(code)

			done := make(chan bool, 1)
			client.ExchangeCode(func(valid bool) { done <- valid })
			if !<-done {
				return fmt.Errorf("token exchange rejected by the exchange")
			}
			fmt.Println("tokens stored")
			return nil
		},
	}

	addClientFlags(cmd, &clientID, &prefsPath, &oauthHost, &apiHost)
	return cmd
}

func newRevokeCmd() *cobra.Command {
	var (
		clientID  string
		prefsPath string
		oauthHost string
		apiHost   string
	)

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke the stored access token and clear local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := openClient(cmd, clientID, prefsPath, oauthHost, apiHost)
			if err != nil {
				return err
			}
			defer cleanup()

			done := make(chan bool, 1)
			client.RevokeToken(func(ok bool) { done <- ok })
			if !<-done {
				return fmt.Errorf("revocation rejected by the exchange")
			}
			fmt.Println("tokens revoked")
			return nil
		},
	}

	addClientFlags(cmd, &clientID, &prefsPath, &oauthHost, &apiHost)
	return cmd
}
