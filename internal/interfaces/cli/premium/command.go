// Package premium provides operator commands for premium entitlements.
package premium

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/castpass/castpass/internal/infrastructure/auth"
	"github.com/castpass/castpass/internal/infrastructure/config"
	"github.com/castpass/castpass/internal/infrastructure/database"
	httpRouter "github.com/castpass/castpass/internal/interfaces/http"
	sharedConfig "github.com/castpass/castpass/internal/shared/config"
	"github.com/castpass/castpass/internal/shared/logger"
)

type options struct {
	env        string
	configPath string
	fid        uint64
	wallet     string
	network    string
	retention  time.Duration
	ttl        time.Duration
}

func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "premium",
		Short: "Verify payments and inspect premium entitlements",
		Long:  `Run premium verification, status and compaction against the configured database. Output is YAML.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newVerifyCommand(opts),
		newStatusCommand(opts),
		newCompactCommand(opts),
		newTokenCommand(opts),
	)

	return cmd
}

func newVerifyCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Look for a qualifying payment and grant premium access",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(opts, func(c *httpRouter.Container) error {
				result, err := c.VerificationService().Verify(cmd.Context(), opts.fid, opts.wallet, opts.network)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().Uint64Var(&opts.fid, "fid", 0, "Farcaster id (required)")
	cmd.Flags().StringVar(&opts.wallet, "wallet", "", "Paying wallet address (required)")
	cmd.Flags().StringVar(&opts.network, "network", "base", "Network to search (mainnet, base)")
	_ = cmd.MarkFlagRequired("fid")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

func newStatusCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored entitlement of an identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(opts, func(c *httpRouter.Container) error {
				status, err := c.VerificationService().Status(cmd.Context(), opts.fid, opts.wallet)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), status)
			})
		},
	}

	cmd.Flags().Uint64Var(&opts.fid, "fid", 0, "Farcaster id (required)")
	cmd.Flags().StringVar(&opts.wallet, "wallet", "", "Wallet address (required)")
	_ = cmd.MarkFlagRequired("fid")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

func newCompactCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Delete entitlements that expired more than --retention ago",
		Long:  `Delete expired entitlements. The consumed-transaction index is kept so a compacted payment can never be reused.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(opts, func(c *httpRouter.Container) error {
				result, err := c.VerificationService().Compact(cmd.Context(), opts.retention)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().DurationVar(&opts.retention, "retention", 30*24*time.Hour, "Keep expired entitlements this long")

	return cmd
}

type tokenOutput struct {
	FID       uint64    `yaml:"fid"`
	Token     string    `yaml:"token"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

func newTokenCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token bound to a fid",
		Long:  `Sign a JWT with auth.jwt.secret whose subject is --fid. Intended for testing authenticated deployments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := initEnv(opts)
			if err != nil {
				return err
			}
			if cfg.Auth.JWT.Secret == "" {
				return errors.New("auth.jwt.secret is not configured")
			}

			token, err := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer).Generate(opts.fid, opts.ttl)
			if err != nil {
				return err
			}

			return printYAML(cmd.OutOrStdout(), tokenOutput{
				FID:       opts.fid,
				Token:     token,
				ExpiresAt: time.Now().UTC().Add(opts.ttl).Truncate(time.Second),
			})
		},
	}

	cmd.Flags().Uint64Var(&opts.fid, "fid", 0, "Farcaster id (required)")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("fid")

	return cmd
}

// initEnv loads config and a logger that writes to stderr, keeping stdout
// for command output.
func initEnv(opts *options) (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(opts.env, opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if strings.EqualFold(cfg.Logger.OutputPath, "stdout") || cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = "stderr"
	}
	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

func withContainer(opts *options, fn func(c *httpRouter.Container) error) error {
	cfg, log, err := initEnv(opts)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var db *gorm.DB
	if cfg.Database.Driver != sharedConfig.DriverMemory {
		if err := database.Init(&cfg.Database); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()
		db = database.Get()
	}

	c, err := httpRouter.NewContainer(db, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(c)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}
