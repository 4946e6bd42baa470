package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type serverRow struct {
	URL      string `json:"url"`
	TokenSet bool   `json:"token_set"`
	RootDir  string `json:"root_dir,omitempty"`
	Source   string `json:"source"`
}

func newServersCmd(root *rootOptions) *cobra.Command {
	opts := &serverFlags{}
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Show the servers that would be searched and where they came from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := opts.resolveServers(cmd, root)
			if err != nil {
				return err
			}

			rows := make([]serverRow, 0, len(conn.Servers))
			for _, srv := range conn.Servers {
				rows = append(rows, serverRow{
					URL:      srv.BaseURL,
					TokenSet: srv.Token != "",
					RootDir:  srv.RootDir,
					Source:   conn.Source,
				})
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "URL\tTOKEN\tROOT DIR\tSOURCE")
			for _, row := range rows {
				token := "-"
				if row.TokenSet {
					token = "set"
				}
				rootDir := row.RootDir
				if rootDir == "" {
					rootDir = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.URL, token, rootDir, row.Source)
			}
			return tw.Flush()
		},
	}
	addServerFlags(cmd, opts)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the server list as JSON")
	return cmd
}
