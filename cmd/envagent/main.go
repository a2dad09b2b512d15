// Command envagent runs a configured agent as an interactive chat on stdin.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	envagent "github.com/notwitcheer/env-dev-ai-agent"
	"github.com/notwitcheer/env-dev-ai-agent/capability/builtin"
	"github.com/notwitcheer/env-dev-ai-agent/config"
	"github.com/notwitcheer/env-dev-ai-agent/logging"
	"github.com/notwitcheer/env-dev-ai-agent/memory"
	"github.com/notwitcheer/env-dev-ai-agent/model"
	"github.com/notwitcheer/env-dev-ai-agent/model/anthropic"
	"github.com/notwitcheer/env-dev-ai-agent/model/openai"
	"github.com/notwitcheer/env-dev-ai-agent/reasoning"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "envagent",
		Short:        "Agent execution runtime",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config")

	chat := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the configured agent on stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			return runChat(cmd.Context(), cfg)
		},
	}
	root.AddCommand(chat)
	return root
}

func runChat(ctx context.Context, cfg config.Config) error {
	logger := buildLogger(cfg.Logging)

	provider, err := buildProvider(cfg.Model, logger)
	if err != nil {
		return err
	}
	store, err := buildStore(cfg.Snapshots)
	if err != nil {
		return err
	}

	rt := envagent.New(func(o *envagent.Options) {
		o.Provider = provider
		o.Store = store
		o.Logger = logger
	})
	if err := rt.RegisterCapabilities(
		builtin.Add(),
		builtin.Echo(),
		builtin.SocialFeed(),
	); err != nil {
		return err
	}

	a := rt.NewAgent(cfg.Agent)
	if err := a.Restore(ctx); err != nil {
		return err
	}

	fmt.Printf("session %s ready (ctrl-d to exit)\n", a.ID())
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		resp := a.Execute(ctx, input)
		fmt.Println(resp.Message)
	}
	return scanner.Err()
}

func buildLogger(cfg config.LoggingConfig) logging.Logger {
	level := logging.LogLevelInfo
	switch cfg.Level {
	case "debug":
		level = logging.LogLevelDebug
	case "warn":
		level = logging.LogLevelWarn
	case "error":
		level = logging.LogLevelError
	}
	return logging.NewSlogLogger(level, cfg.Format)
}

func buildProvider(cfg config.ModelConfig, logger logging.Logger) (reasoning.Provider, error) {
	var m model.Model
	switch cfg.Provider {
	case "":
		// Deterministic demo rules when no generative backend is configured.
		return reasoning.NewRuleProvider(demoRules(), func(o *reasoning.RuleProviderOptions) {
			o.Logger = logger
		}), nil
	case "openai":
		m = openai.NewModel(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
		})
	case "anthropic":
		m = anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
		})
	case "mock":
		m = model.NewMockModel()
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
	return reasoning.NewGenerativeProvider(m, func(o *reasoning.GenerativeProviderOptions) {
		o.Logger = logger
	}), nil
}

func buildStore(cfg config.SnapshotConfig) (memory.Store, error) {
	switch cfg.Backend {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "snapshots"
		}
		return memory.NewFileStore(dir), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return memory.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}
