package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/quaylabs/exchangekit/internal/crypto"
	"github.com/quaylabs/exchangekit/internal/exchange"
	"github.com/quaylabs/exchangekit/internal/logx"
	"github.com/quaylabs/exchangekit/internal/prefs"
	"github.com/quaylabs/exchangekit/internal/publisher"
	"github.com/quaylabs/exchangekit/internal/redact"
	"github.com/quaylabs/exchangekit/internal/server"
	"github.com/quaylabs/exchangekit/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	verbose := flag.Bool("verbose", false, "Enable verbose debug logs (same as --log-level debug)")
	logLevel := flag.String("log-level", "", "Log level: debug|info|warn|error (or EXCHANGEKIT_LOG_LEVEL)")
	flag.BoolVar(showVersion, "v", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.String("exchangekit-server"))
		fmt.Fprintf(os.Stderr, "Exchangekit server persists publisher reward records and proxies the exchange widget API.\n\n")
		fmt.Fprintf(os.Stderr, "Environment variables:\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_ADMIN_TOKEN   Admin Bearer token for publisher refresh (min 16 chars, required)\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_SEAL_SECRET   Secret used to derive the token sealing key (required)\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_CLIENT_ID     OAuth client id registered with the exchange (required)\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_DB_PATH       Publisher SQLite database path (default: publishers.db)\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_PREFS_PATH    Preference SQLite database path (default: prefs.db)\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_LISTEN_ADDR   Listen address (default: :8080)\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_OAUTH_HOST    Exchange authentication host override\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_API_HOST      Exchange public API host override\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_REDIRECT_URI  OAuth redirect override\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_CORS_ORIGINS  Comma-separated allowed widget origins\n")
		fmt.Fprintf(os.Stderr, "  EXCHANGEKIT_LOG_LEVEL     Log level: debug|info|warn|error (default: info)\n")
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("exchangekit-server"))
		os.Exit(0)
	}

	if err := logx.Configure(*logLevel, *verbose); err != nil {
		log.Fatalf("configure logging: %v", err)
	}

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sealer, err := crypto.NewSealer(cfg.SealSecret)
	if err != nil {
		log.Fatalf("init sealer: %v", err)
	}

	preferences, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		log.Fatalf("open preferences: %v", err)
	}
	defer preferences.Close()

	tokens := exchange.NewTokenStore(preferences, sealer)

	// Anything we log after this point has the loaded token pair masked.
	logx.SetOutput(redact.NewWriter(os.Stderr, []string{
		tokens.AccessToken(),
		tokens.RefreshToken(),
	}))

	client := exchange.NewClient(cfg.ExchangeConfig(), tokens)
	defer client.Close()

	store, err := publisher.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("open publisher database: %v", err)
	}
	defer store.Close()

	r := server.NewRouter(store, client, cfg)
	logx.Infof("server config: oauth_host=%s api_host=%s tld=%s",
		cfg.ExchangeConfig().OAuthHost, cfg.ExchangeConfig().APIHost,
		exchange.ServingTLD(preferences))

	log.Printf("exchangekit-server listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
