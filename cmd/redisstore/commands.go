package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/redisstore"
	"github.com/unkn0wn-root/redisstore/codec"
	"github.com/unkn0wn-root/redisstore/config"
	zaplog "github.com/unkn0wn-root/redisstore/log/zap"
)

type app struct {
	logger *zap.Logger
	url    string
	prefix string
	debug  bool

	store redisstore.RedisStore[any]
	out   io.Writer
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	a := &app{logger: logger}

	root := &cobra.Command{
		Use:           "redisstore",
		Short:         "Inspect and edit a Redis-backed cache",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.url, "url", "", "redis URL (overrides REDIS_* variables)")
	root.PersistentFlags().StringVar(&a.prefix, "prefix", "", "key namespace (overrides REDIS_PREFIX)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log store events at debug level")

	root.AddCommand(
		a.getCmd(),
		a.setCmd(),
		a.delCmd(),
		a.ttlCmd(),
		a.incrByCmd(),
		a.scanCmd(),
		a.keysCmd(),
		a.resetCmd(),
		a.flushAllCmd(),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.url != "" {
		cfg.URL = a.url
	}
	if a.prefix != "" {
		cfg.Prefix = a.prefix
	}

	client, err := config.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	logger := a.logger
	if !a.debug {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	}
	a.store, err = redisstore.New[any](redisstore.Options[any]{
		Client:      client,
		Codec:       codec.JSON[any]{UseNumber: true},
		Prefix:      cfg.Prefix,
		DefaultTTL:  cfg.TTL,
		Logger:      zaplog.New(logger),
		CloseClient: true,
	})
	if err != nil {
		_ = client.Close()
		return err
	}
	a.logger.Debug("connected", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseValue reads JSON when the argument is valid JSON, otherwise a plain string.
func parseValue(arg string) any {
	v, err := codec.JSON[any]{UseNumber: true}.Decode([]byte(arg))
	if err != nil || v == nil {
		return arg
	}
	return v
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok, err := a.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: not found", args[0])
			}
			return a.print(v)
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value (JSON if it parses, else a string)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Set(cmd.Context(), args[0], parseValue(args[1]), ttl)
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expiry (0 uses REDIS_TTL, negative disables expiry)")
	return cmd
}

func (a *app) delCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>...",
		Short: "Delete keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Del(cmd.Context(), args...)
		},
	}
}

func (a *app) ttlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ttl <key>",
		Short: "Print the remaining time to live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := a.store.TTL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch ttl {
			case -2:
				return fmt.Errorf("%s: not found", args[0])
			case -1:
				return a.print("no expiry")
			}
			return a.print(ttl.String())
		},
	}
}

func (a *app) incrByCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "incrby <key> <amount>",
		Short: "Increment an integer value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			v, err := a.store.IncrBy(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			return a.print(v)
		},
	}
}

func (a *app) scanCmd() *cobra.Command {
	var cursor uint64
	var count int64
	cmd := &cobra.Command{
		Use:   "scan <pattern>",
		Short: "Print one SCAN page and the cursor to continue from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.store.Scan(cmd.Context(), args[0], cursor, count)
			if err != nil {
				return err
			}
			return a.print(map[string]any{"cursor": page.Cursor, "keys": page.Keys})
		},
	}
	cmd.Flags().Uint64Var(&cursor, "cursor", 0, "cursor returned by the previous page")
	cmd.Flags().Int64Var(&count, "count", 0, "page size hint (0 = server default)")
	return cmd
}

func (a *app) keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <pattern>",
		Short: "Walk SCAN to completion and print every matching key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := a.store.Keys(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(keys)
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Flush the namespace (the whole DB without a prefix)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.store.Reset(cmd.Context())
		},
	}
}

func (a *app) flushAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flushall",
		Short: "Flush every DB on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.store.FlushAll(cmd.Context())
		},
	}
}
