package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/config"
	"github.com/sagarc03/bucketgate/database"
	gatehttp "github.com/sagarc03/bucketgate/http"
	"github.com/sagarc03/bucketgate/keybackend"
	"github.com/sagarc03/bucketgate/s3store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the bucketgate HTTP server.

The S3 connection is read from the s3.* settings or the standard
AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION and AWS_S3_BUCKET
environment variables. Credentials are loaded once at startup.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8000, "HTTP server port")
	serveCmd.Flags().String("bucket", "", "S3 bucket name (env: AWS_S3_BUCKET)")
	serveCmd.Flags().String("region", "", "S3 region (env: AWS_REGION)")
	serveCmd.Flags().String("endpoint", "", "custom S3 endpoint, e.g. for MinIO")
	serveCmd.Flags().Bool("path-style", false, "use path-style bucket addressing")
	serveCmd.Flags().Bool("metrics", false, "expose Prometheus metrics at /metrics")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	if err = cfg.S3.Validate(); err != nil {
		return err
	}

	store, err := s3store.New(cfg.S3.StoreConfig())
	if err != nil {
		return fmt.Errorf("create s3 store: %w", err)
	}
	slog.Info("using bucket", "bucket", store.Bucket(), "region", cfg.S3.Region, "endpoint", cfg.S3.Endpoint)

	gateway := bucketgate.NewGateway(store, bucketgate.GatewayConfig{
		PresignExpiry: cfg.S3.PresignDuration(),
	})

	auth, closeAuth, err := buildAuthenticator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAuth()

	var metrics *gatehttp.Metrics
	if cfg.Metrics.Enabled {
		metrics = gatehttp.NewMetrics()
	}

	handler := gatehttp.NewHandler(&gatehttp.HandlerConfig{
		Authenticator: auth,
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Metrics:       metrics,
	}, gateway)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "metrics", cfg.Metrics.Enabled)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// buildAuthenticator combines the static credentials with the user database.
// Static credentials are checked first.
func buildAuthenticator(ctx context.Context, cfg *config.Config) (bucketgate.Authenticator, func(), error) {
	noop := func() {}

	static, err := keybackend.NewAuthenticator(cfg.Auth.Static())
	if err != nil {
		return nil, noop, fmt.Errorf("load credentials: %w", err)
	}

	var auths []bucketgate.Authenticator
	if static.Len() > 0 {
		auths = append(auths, static)
		slog.Info("loaded static credentials", "users", static.Len(), "file", cfg.Auth.File)
	}

	closeDB := noop
	if cfg.Auth.Database.Enabled() {
		repo, closeFn, dbErr := openUserRepo(ctx, cfg)
		if dbErr != nil {
			return nil, noop, dbErr
		}
		closeDB = closeFn
		auths = append(auths, database.NewAuthenticator(repo))
		slog.Info("using user database", "type", cfg.Auth.Database.Type)
	}

	if len(auths) == 0 {
		return nil, noop, errors.New("no credentials configured: set auth.file, auth.inline or auth.database")
	}

	return bucketgate.ChainAuthenticators(auths...), closeDB, nil
}
