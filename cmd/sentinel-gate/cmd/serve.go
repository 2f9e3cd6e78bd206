package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	inboundhttp "github.com/Sentinel-Gate/Sentinelgate/internal/adapter/inbound/http"
	"github.com/Sentinel-Gate/Sentinelgate/internal/adapter/inbound/stdio"
	"github.com/Sentinel-Gate/Sentinelgate/internal/adapter/outbound/kv"
	"github.com/Sentinel-Gate/Sentinelgate/internal/compose"
	"github.com/Sentinel-Gate/Sentinelgate/internal/config"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/handler"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/identity"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/session"
	"github.com/Sentinel-Gate/Sentinelgate/internal/domain/terminal"
)

var serveStdio bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the composed handler chain over HTTP or stdio",
	Long: `Serve loads the runtime's configuration, opens its session store, builds
its identity decoder when oauth mode is configured, links the handler
chain from the root compose manifest (the same wiring "compose" validates
offline), and runs it behind either the HTTP transport or, with --stdio,
a single stdin/stdout session.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "serve a single session over stdin/stdout instead of HTTP")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.Server.LogLevel)}))
	if file := config.ConfigFileUsed(); file != "" {
		logger.Info("loaded config file", "path", file)
	}

	store, err := buildStore(cfg.Session)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}

	chain, err := buildChain(cfg.Compose, store)
	if err != nil {
		return fmt.Errorf("building handler chain: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	defer stop()

	if serveStdio {
		transport := stdio.NewTransport(chain, store, cfg.Server.SessionBucket, logger)
		logger.Info("sentinel-gate serving over stdio")
		return transport.Run(ctx, os.Stdin, os.Stdout)
	}

	transport, err := buildHTTPTransport(cfg, chain, store, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: transport.Routes(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("sentinel-gate listening", "addr", cfg.Server.HTTPAddr, "auth_mode", cfg.Auth.Mode, "dev_mode", cfg.DevMode)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}
}

func buildStore(cfg config.SessionConfig) (session.KVStore, error) {
	if cfg.Backend == "sqlite" {
		return kv.OpenSQLiteStore(cfg.SQLitePath)
	}
	return kv.NewMemoryStore(), nil
}

// buildChain links the handler chain from the root compose manifest named
// by cfg.ManifestPath. A missing or empty manifest yields a bare terminal
// chain, a legitimate "no capabilities wired yet" runtime rather than a
// startup error, since a fresh deployment may not have any components
// registered.
func buildChain(cfg config.ComposeConfig, store session.KVStore) (handler.Handler, error) {
	if cfg.ManifestPath == "" {
		return handler.NewChain(terminal.New()), nil
	}
	if _, err := os.Stat(cfg.ManifestPath); err != nil {
		return handler.NewChain(terminal.New()), nil
	}

	root, err := compose.LoadRootManifest(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	if len(root.Components) == 0 {
		return handler.NewChain(terminal.New()), nil
	}

	builder := compose.NewBuilder(compose.NewRegistry())
	builder.Store = store
	artifact, err := builder.Build(root.Components)
	if err != nil {
		return nil, err
	}
	return artifact.Chain, nil
}

func buildHTTPTransport(cfg *config.Config, chain handler.Handler, store session.KVStore, logger *slog.Logger) (*inboundhttp.Transport, error) {
	t := inboundhttp.NewTransport(chain, store, cfg.Server.SessionBucket, prometheus.DefaultRegisterer, logger)
	t.SessionsEnabled = cfg.Server.SessionsEnabled
	t.DisableSSE = cfg.Server.DisableSSE
	t.PublicResourceURL = cfg.Server.PublicResourceURL
	t.ServerName = "sentinel-gate"
	t.ServerVersion = Version

	if len(cfg.Server.AllowedOrigins) > 0 {
		origins := make(map[string]struct{}, len(cfg.Server.AllowedOrigins))
		for _, o := range cfg.Server.AllowedOrigins {
			origins[o] = struct{}{}
		}
		t.AllowedOrigins = origins
	}

	if cfg.Auth.Mode == "oauth" {
		decoder, err := buildDecoder(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("building identity decoder: %w", err)
		}
		t.Decoder = decoder
		t.AuthMode = inboundhttp.AuthOAuth
		t.Issuer = cfg.Auth.Issuer
	}

	return t, nil
}

// buildDecoder wires the oauth-mode JWT decoder from whichever key source
// is configured: a static PEM file, or a JWKS endpoint resolved once at
// startup and looked up by key ID per token.
func buildDecoder(cfg config.AuthConfig) (*identity.Decoder, error) {
	switch {
	case cfg.JWTPublicKeyPath != "":
		key, err := loadPublicKeyPEM(cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, err
		}
		return identity.NewDecoderWithPublicKey(key, cfg.Issuer, cfg.Audience), nil
	case cfg.JWKSURI != "":
		keyFunc, err := jwksKeyFunc(cfg.JWKSURI)
		if err != nil {
			return nil, err
		}
		return identity.NewDecoderWithKeyFunc(keyFunc, cfg.Issuer, cfg.Audience), nil
	default:
		return nil, fmt.Errorf("auth mode %q requires jwt_public_key_path or jwks_uri", cfg.Mode)
	}
}

func loadPublicKeyPEM(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key %s: %w", path, err)
	}
	if key, err := jwt.ParseRSAPublicKeyFromPEM(data); err == nil {
		return key, nil
	}
	if key, err := jwt.ParseECPublicKeyFromPEM(data); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%s: unrecognized public key format (expected RSA or EC PEM)", path)
}

// jwksKeyFunc fetches a JWKS document once at startup and returns a
// jwt.Keyfunc that resolves each token's "kid" header against the
// resulting key set. There is no background refresh: a rotated signing
// key requires a restart, a limitation acceptable for a runtime whose
// identity provider's keys are expected to be long-lived.
func jwksKeyFunc(uri string) (jwt.Keyfunc, error) {
	resp, err := http.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("fetching jwks from %s: %w", uri, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading jwks response from %s: %w", uri, err)
	}
	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing jwks from %s: %w", uri, err)
	}

	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		key, ok := set.LookupKeyID(kid)
		if !ok {
			return nil, fmt.Errorf("jwks: no key found for kid %q", kid)
		}
		var raw interface{}
		if err := jwk.Export(key, &raw); err != nil {
			return nil, fmt.Errorf("jwks: exporting key %q: %w", kid, err)
		}
		return raw, nil
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
