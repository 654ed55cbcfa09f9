package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/paybridgehq/paybridge/internal/config"
	"github.com/paybridgehq/paybridge/internal/gateway"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"github.com/paybridgehq/paybridge/internal/gateway/resolver"
	"github.com/paybridgehq/paybridge/internal/metrics"
	"github.com/paybridgehq/paybridge/internal/migration"
	"github.com/paybridgehq/paybridge/internal/observability"
	"github.com/paybridgehq/paybridge/internal/redis"
	"github.com/paybridgehq/paybridge/internal/server"
	"github.com/paybridgehq/paybridge/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paybridge",
		Short: "Paybridge payment gateway",
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newSeedCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var (
		identifier string
		kind       string
		webhookKey string
		configJSON string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert or update a processor configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(identifier, kind, webhookKey, configJSON)
		},
	}
	cmd.Flags().StringVar(&identifier, "identifier", "", "configuration identifier (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "processor kind, e.g. flutterwave (required)")
	cmd.Flags().StringVar(&webhookKey, "webhook-key", "", "static webhook signature value, when the processor sends one")
	cmd.Flags().StringVar(&configJSON, "config-json", "{}", "processor credentials as a JSON object")
	_ = cmd.MarkFlagRequired("identifier")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	return app.Stop(context.Background())
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		metrics.Module,
		db.Module,
		redis.Module,
		gateway.Module,
		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server, engine *gin.Engine) {
			s.RegisterRoutes(engine)
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func runSeed(identifier, kind, webhookKey, configJSON string) error {
	var settings map[string]any
	if err := json.Unmarshal([]byte(configJSON), &settings); err != nil {
		return fmt.Errorf("invalid --config-json: %w", err)
	}

	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		fx.Provide(registerSnowflake),
		fx.Invoke(func(gdb *gorm.DB, node *snowflake.Node, cfg config.Config, log *zap.Logger) error {
			encrypted, err := resolver.EncryptConfig(resolver.DeriveKey(cfg.Gateway.ConfigSecret), settings)
			if err != nil {
				return err
			}
			record := domain.ProcessorConfig{
				ID:         node.Generate(),
				Identifier: identifier,
				Kind:       kind,
				Config:     encrypted,
				WebhookKey: webhookKey,
				IsActive:   true,
			}
			err = gdb.Where("identifier = ?", identifier).
				Assign(map[string]any{
					"kind":        kind,
					"config":      encrypted,
					"webhook_key": webhookKey,
					"is_active":   true,
				}).
				FirstOrCreate(&record).Error
			if err != nil {
				return err
			}
			log.Info("processor configuration saved",
				zap.String("identifier", identifier),
				zap.String("kind", kind))
			return nil
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	return app.Stop(context.Background())
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
