package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nbkit/jkexec/internal/kernel"
	"github.com/nbkit/jkexec/internal/resolve"
)

type execFlags struct {
	serverFlags
	kernelID    string
	kernelMatch string
	code        string
	codeFile    string
	codeStdin   bool
	jsonOut     bool
	resultOnly  bool
}

func newExecCmd(root *rootOptions) *cobra.Command {
	opts := &execFlags{}
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute a code snippet on a resolved kernel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.kernelID != "" && opts.kernelMatch != "" {
				return fmt.Errorf("provide only one of --kernel-id or --kernel-match")
			}
			if opts.kernelID == "" && opts.kernelMatch == "" {
				return fmt.Errorf("missing --kernel-id (or use --kernel-match)")
			}
			code, err := opts.readCode(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			conn, err := opts.resolveServers(cmd, root)
			if err != nil {
				return err
			}

			var target resolve.Target
			if opts.kernelID != "" && opts.baseURL != "" {
				// Explicit server plus explicit id: trust the id without a
				// directory pass.
				srv := conn.Servers[0]
				target = resolve.Target{BaseURL: srv.BaseURL, Token: srv.Token, KernelID: opts.kernelID}
			} else {
				httpClient := &http.Client{Timeout: conn.Timeout}
				target, err = resolve.Resolve(cmd.Context(), httpClient, conn.Servers, opts.kernelID, opts.kernelMatch, root.logger)
				if err != nil {
					return err
				}
			}

			kernelOpts := kernel.Options{
				BaseURL:    target.BaseURL,
				Token:      target.Token,
				KernelID:   target.KernelID,
				Code:       code,
				Timeout:    conn.Timeout,
				ResultOnly: opts.resultOnly,
				Logger:     root.logger,
			}
			if !opts.jsonOut {
				kernelOpts.Sink = &consolePrinter{out: cmd.OutOrStdout()}
			}
			outcome, err := kernel.Execute(cmd.Context(), kernelOpts)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(outcome)
			}
			return nil
		},
	}
	addServerFlags(cmd, &opts.serverFlags)
	cmd.Flags().StringVar(&opts.kernelID, "kernel-id", "", "kernel ID to execute against")
	cmd.Flags().StringVar(&opts.kernelMatch, "kernel-match", "", "match session path/name to resolve the kernel; use 're:<pattern>' for regex")
	cmd.Flags().StringVar(&opts.code, "code", "", "inline code to execute (literal \\n sequences become newlines)")
	cmd.Flags().StringVar(&opts.codeFile, "code-file", "", "path to a file with code to execute")
	cmd.Flags().BoolVar(&opts.codeStdin, "code-stdin", false, "read code from stdin")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "emit one aggregated JSON outcome instead of incremental output")
	cmd.Flags().BoolVar(&opts.resultOnly, "result-only", false, "only emit computed results (plus errors)")
	return cmd
}

// readCode enforces that exactly one code source was given and reads it.
func (o *execFlags) readCode(stderr io.Writer) (string, error) {
	sources := 0
	for _, set := range []bool{o.code != "", o.codeFile != "", o.codeStdin} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return "", fmt.Errorf("provide only one of --code, --code-file, or --code-stdin")
	}
	if sources == 0 {
		return "", fmt.Errorf("missing code: use --code, --code-file, or --code-stdin")
	}
	switch {
	case o.codeFile != "":
		data, err := os.ReadFile(o.codeFile)
		if err != nil {
			return "", fmt.Errorf("code file: %w", err)
		}
		return string(data), nil
	case o.codeStdin:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(stderr, "reading code from terminal; finish with Ctrl-D")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		return strings.ReplaceAll(o.code, `\n`, "\n"), nil
	}
}
