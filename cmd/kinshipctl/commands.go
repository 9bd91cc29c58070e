package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/juruladenbam/bam-sub001/common/clients"
	"github.com/juruladenbam/bam-sub001/common/config"
	"github.com/juruladenbam/bam-sub001/common/events"
	"github.com/juruladenbam/bam-sub001/common/logger"
	rediscommon "github.com/juruladenbam/bam-sub001/common/redis"
)

// app carries the state shared by every subcommand. The publisher dialer is
// a field so tests can swap Redis out.
type app struct {
	kinshipURL string
	secret     string
	clientID   string
	timeout    time.Duration
	logLevel   string
	asJSON     bool
	channel    string

	log    *logger.Logger
	client *clients.KinshipClient

	dialPublisher func(ctx context.Context, log *logger.Logger) (events.Publisher, func() error, error)
}

func newApp() *app {
	return &app{dialPublisher: dialRedisPublisher}
}

func newRootCmd(a *app) *cobra.Command {
	defaults := clients.LoadClientConfig()

	rootCmd := &cobra.Command{
		Use:           "kinshipctl",
		Short:         "Query and maintain the kinship relationship resolver",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = logger.NewWithWriter(cmd.ErrOrStderr(), a.logLevel, "text").WithService("kinshipctl")

			cfg := &clients.ClientConfig{
				KinshipURL:     a.kinshipURL,
				InternalSecret: a.secret,
				Timeout:        a.timeout,
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.client = clients.NewKinshipClient(cfg, a.log)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.kinshipURL, "url", defaults.KinshipURL, "kinship service base URL")
	flags.StringVar(&a.secret, "secret", defaults.InternalSecret, "internal service secret for mutation hooks")
	flags.StringVar(&a.clientID, "client-id", "kinshipctl", "value sent as X-Client-ID")
	flags.DurationVar(&a.timeout, "timeout", defaults.Timeout, "HTTP request timeout")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.asJSON, "json", false, "print raw JSON responses")

	rootCmd.AddCommand(
		newResolveCmd(a),
		newGenerationCmd(a),
		newStatsCmd(a),
		newMutateCmd(a),
		newRecomputeCmd(a),
		newNotifyCmd(a),
	)

	return rootCmd
}

func (a *app) context(cmd *cobra.Command) context.Context {
	return clients.WithClientID(cmd.Context(), a.clientID)
}

// parseIDs parses person ids given as positional arguments
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid person id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dialRedisPublisher(ctx context.Context, log *logger.Logger) (events.Publisher, func() error, error) {
	cfg, err := config.Load("kinshipctl")
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	client, err := rediscommon.Dial(ctx, rediscommon.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}
