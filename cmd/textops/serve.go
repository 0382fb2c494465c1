package main

import (
	"github.com/spf13/cobra"

	"github.com/skosovsky/textops/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := opts.app
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv, err := server.New(a.engine, a.service, server.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; defaults to server.addr")
	return cmd
}
