// Command phrasebook serves the emoji phrasebook API and form UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"phrasebook/internal/app"
	"phrasebook/internal/authlink"
	"phrasebook/internal/config"
	"phrasebook/internal/credentials"
	"phrasebook/internal/email"
	"phrasebook/internal/glyph"
	"phrasebook/internal/logging"
	"phrasebook/internal/session"
	"phrasebook/internal/store"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "phrasebook",
	Short: "Emoji phrasebook server",
	Long: `phrasebook keeps a personal phrasebook of categories and phrases, each category
tagged with a generated emoji. Users sign in with a passwordless login link.

Configuration comes from an optional YAML file and PHRASEBOOK_* environment variables,
for example PHRASEBOOK_STORE_DRIVER=postgres.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(emojifyCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a credential nothing can be signed, so startup stops here.
	cred, credPath, err := credentials.Load(cfg.Credentials.Path)
	if err != nil {
		logger.Error("credential load failed", zap.String("path", credPath), zap.Error(err))
		return fmt.Errorf("load credentials: %w", err)
	}
	logger.Info("credential loaded", zap.String("path", credPath), zap.String("project_id", cred.ProjectID))

	var source credentials.Source = credentials.Static(cred)
	if cfg.Credentials.Watch {
		watcher, err := credentials.Watch(credPath, cred, logger.Named("credentials"))
		if err != nil {
			return err
		}
		defer watcher.Close()
		source = watcher
	}

	phrases, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer phrases.Close()

	sessions, err := session.Open(cfg.Session.Driver, cfg.Session.RedisURL)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()
	logger.Info("session store ready", zap.String("driver", cfg.Session.Driver))

	glyphs, err := newGenerator(cfg.Glyph)
	if err != nil {
		return err
	}

	settings := authlink.ActionCodeSettings{
		ContinueURL:           cfg.Auth.ContinueURL,
		HandleCodeInApp:       cfg.Auth.HandleCodeInApp,
		IOSBundleID:           cfg.Auth.IOSBundleID,
		AndroidPackageName:    cfg.Auth.AndroidPackageName,
		AndroidInstallApp:     cfg.Auth.AndroidInstallApp,
		AndroidMinimumVersion: cfg.Auth.AndroidMinimumVersion,
	}
	if err := settings.Validate(); err != nil {
		logger.Warn("sign-in links will fail until auth settings are fixed", zap.Error(err))
	}
	gateway := authlink.New(source, sessions, authlink.Config{
		Settings:   settings,
		LinkTTL:    cfg.Auth.LinkTTL,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     logger.Named("authlink"),
	})

	deps := app.Deps{
		Gateway:  gateway,
		Store:    phrases,
		Sessions: sessions,
		Glyphs:   glyphs,
		Logger:   logger,
	}
	mailer := email.NewService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	if mailer.IsConfigured() {
		deps.Mailer = mailer
		logger.Info("login links will also be emailed", zap.String("smtp_host", cfg.SMTP.Host))
	}

	service := app.New(deps)
	httpServer := app.NewHTTPServer(service, cfg.Server.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("phrasebook listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("glyph_strategy", cfg.Glyph.Strategy),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("phrasebook stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (store.PhraseStore, error) {
	switch cfg.Driver {
	case "postgres":
		s, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		logger.Info("phrase store ready", zap.String("driver", "postgres"))
		return s, nil
	case "mongo":
		s, err := store.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		logger.Info("phrase store ready", zap.String("driver", "mongo"), zap.String("database", cfg.MongoDatabase))
		return s, nil
	default:
		logger.Info("phrase store ready", zap.String("driver", "memory"))
		return store.NewMemoryStore(), nil
	}
}

func newGenerator(cfg config.GlyphConfig) (glyph.Generator, error) {
	g, err := glyph.New(glyph.Settings{
		Strategy: cfg.Strategy,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph generator: %w", err)
	}
	return g, nil
}
