package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nbkit/jkexec/internal/jupyter"
)

type sessionRow struct {
	KernelID string `json:"kernel_id"`
	Server   string `json:"server"`
	Path     string `json:"path"`
	Name     string `json:"name"`
}

func newSessionsCmd(root *rootOptions) *cobra.Command {
	opts := &serverFlags{}
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List running sessions across the searched servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := opts.resolveServers(cmd, root)
			if err != nil {
				return err
			}
			httpClient := &http.Client{Timeout: conn.Timeout}
			records, errs := jupyter.CollectRecords(cmd.Context(), httpClient, conn.Servers, root.logger)
			for _, msg := range errs {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}

			if jsonOut {
				rows := make([]sessionRow, 0, len(records))
				for _, record := range records {
					rows = append(rows, sessionRow{
						KernelID: record.KernelID,
						Server:   record.ServerBaseURL,
						Path:     record.Path(),
						Name:     record.Name(),
					})
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KERNEL ID\tSERVER\tPATH\tNAME")
			for _, record := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", record.KernelID, record.ServerBaseURL, record.Path(), record.Name())
			}
			return tw.Flush()
		},
	}
	addServerFlags(cmd, opts)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the session list as JSON")
	return cmd
}
