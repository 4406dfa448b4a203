package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQL migrations to Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newBootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		return rt.migrate(cmd.Context())
	},
}
