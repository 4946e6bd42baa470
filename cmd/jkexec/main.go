package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbkit/jkexec/internal/cliconfig"
	"github.com/nbkit/jkexec/internal/client"
	"github.com/nbkit/jkexec/internal/kernel"
)

type rootOptions struct {
	configPath  string
	contextName string
	verbose     bool
	logger      *slog.Logger
}

// serverFlags are shared by every subcommand that needs a server set.
type serverFlags struct {
	baseURL      string
	token        string
	timeout      time.Duration
	autoDiscover bool
}

func addServerFlags(cmd *cobra.Command, flags *serverFlags) {
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Jupyter server base URL, e.g. http://localhost:8888")
	cmd.Flags().StringVar(&flags.token, "token", "", "Jupyter token (optional if the server is open)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "request and channel read timeout; defaults to config or 60s")
	cmd.Flags().BoolVar(&flags.autoDiscover, "auto-discover", true, "discover running servers with `jupyter server list` when --base-url is omitted")
}

func (f *serverFlags) resolveServers(cmd *cobra.Command, root *rootOptions) (*client.Connection, error) {
	return client.ResolveServers(cmd.Context(), client.ResolveOptions{
		ConfigPath:   root.configPath,
		ContextName:  root.contextName,
		BaseURL:      f.baseURL,
		Token:        f.token,
		Timeout:      f.timeout,
		AutoDiscover: f.autoDiscover,
		Logger:       root.logger,
	})
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "jkexec",
		Short:         "Execute code on running Jupyter kernels via the server API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultConfig := os.Getenv("JKEXEC_CONFIG")
	if defaultConfig == "" {
		defaultConfig = cliconfig.DefaultConfigPath()
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "path to jkexec config file (default $HOME/.jkexec/config)")
	rootCmd.PersistentFlags().StringVar(&opts.contextName, "context", "", "context name within the config (overrides currentContext)")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging on stderr")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if opts.verbose {
			level = slog.LevelDebug
		}
		opts.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	rootCmd.AddCommand(newExecCmd(opts))
	rootCmd.AddCommand(newSessionsCmd(opts))
	rootCmd.AddCommand(newServersCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var chErr *kernel.ChannelError
		if errors.As(err, &chErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
