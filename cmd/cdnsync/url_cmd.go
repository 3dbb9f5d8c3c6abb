package main

import (
	"fmt"

	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/spf13/cobra"
)

func newURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <path>...",
		Short: "Print the public URL of one or more assets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := prepare(cmd, false)
			if err != nil {
				return err
			}

			resolver, err := cdn.NewURLResolver(cfg.URLConfig())
			if err != nil {
				return err
			}

			for _, p := range args {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), resolver.Resolve(p)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
