package main

import (
	"fmt"

	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/openmined/cdnsync/internal/config"
	"github.com/openmined/cdnsync/internal/utils"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			path := config.DefaultFileName
			if len(args) == 1 {
				path = args[0]
			}
			path, err := utils.ResolvePath(path)
			if err != nil {
				return err
			}

			force, _ := cmd.Flags().GetBool("force")
			if utils.FileExists(path) && !force {
				return fmt.Errorf("%w: %s already exists, use --force to overwrite", cdn.ErrConfiguration, path)
			}

			cfg := config.Default()
			cfg.Bucket, _ = cmd.Flags().GetString("bucket")
			if cfg.Bucket == "" {
				cfg.Bucket = "my-bucket"
			}
			cfg.S3.Region = "us-east-1"
			cfg.URL = "https://s3.amazonaws.com"

			if err := cfg.Save(path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), green.Render("Config written to"), path)
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "overwrite an existing config file")
	return cmd
}
