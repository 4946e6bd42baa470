// Package client resolves which Jupyter servers a command should search,
// merging flags, the config file, environment variables, and auto-discovery.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nbkit/jkexec/internal/cliconfig"
	"github.com/nbkit/jkexec/internal/discovery"
	"github.com/nbkit/jkexec/internal/jupyter"
)

// Connection is the resolved server set plus where it came from.
type Connection struct {
	Servers []jupyter.Server
	Timeout time.Duration
	// Source records which layer produced the servers: flag, config, env,
	// or discovery.
	Source  string
	Config  *cliconfig.Config
	Context *cliconfig.Context
}

// ResolveOptions carries the caller's flags into resolution.
type ResolveOptions struct {
	ConfigPath   string
	ContextName  string
	BaseURL      string
	Token        string
	Timeout      time.Duration
	AutoDiscover bool
	Logger       *slog.Logger
}

// ResolveServers mirrors cmd/jkexec's precedence:
// 1) --base-url/--token flags
// 2) config file context
// 3) environment (JKEXEC_BASE_URL, JKEXEC_TOKEN)
// 4) auto-discovery via `jupyter server list`
func ResolveServers(ctx context.Context, opts ResolveOptions) (*Connection, error) {
	conn := &Connection{Timeout: opts.Timeout}

	if opts.ConfigPath != "" {
		cfg, err := cliconfig.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		conn.Config = cfg
	}
	if conn.Config != nil {
		cfgCtx, _, err := conn.Config.Resolve(opts.ContextName)
		if err != nil {
			return nil, err
		}
		conn.Context = cfgCtx
	}

	if conn.Timeout == 0 {
		if conn.Context != nil && conn.Context.TimeoutSeconds > 0 {
			conn.Timeout = time.Duration(conn.Context.TimeoutSeconds) * time.Second
		} else {
			conn.Timeout = 60 * time.Second
		}
	}

	switch {
	case opts.BaseURL != "":
		conn.Source = "flag"
		conn.Servers = []jupyter.Server{{
			BaseURL: jupyter.NormalizeBaseURL(opts.BaseURL),
			Token:   opts.Token,
		}}
	case conn.Context != nil && conn.Context.Server != "":
		token := opts.Token
		if token == "" {
			token = conn.Context.Token
		}
		conn.Source = "config"
		conn.Servers = []jupyter.Server{{
			BaseURL: jupyter.NormalizeBaseURL(conn.Context.Server),
			Token:   token,
		}}
	case os.Getenv("JKEXEC_BASE_URL") != "":
		token := opts.Token
		if token == "" {
			token = os.Getenv("JKEXEC_TOKEN")
		}
		conn.Source = "env"
		conn.Servers = []jupyter.Server{{
			BaseURL: jupyter.NormalizeBaseURL(os.Getenv("JKEXEC_BASE_URL")),
			Token:   token,
		}}
	case opts.AutoDiscover:
		conn.Source = "discovery"
		conn.Servers = discovery.Servers(ctx, opts.Token, opts.Logger)
		if len(conn.Servers) == 0 {
			return nil, fmt.Errorf("no running Jupyter servers found via `jupyter server list`; provide --base-url")
		}
	default:
		return nil, fmt.Errorf("missing --base-url (enable --auto-discover or provide --base-url)")
	}

	return conn, nil
}
