package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/openmined/cdnsync/internal/assets"
	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload new and changed assets to the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := prepare(cmd, true)
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			out := cmd.OutOrStdout()

			local, err := assets.NewScanner(cfg.Root, cfg.Assets).Scan()
			if err != nil {
				return fmt.Errorf("%w: %v", cdn.ErrConfiguration, err)
			}

			opts, err := cfg.UploadOptions(time.Now())
			if err != nil {
				return err
			}

			r, err := newRun(cmd.Context(), cfg, out)
			if err != nil {
				return err
			}
			defer r.Close()

			uploader := cdn.NewUploader(r.store, opts, r.sink)

			if dryRun {
				plan, err := uploader.Plan(cmd.Context(), local)
				if err != nil {
					return err
				}
				printPlan(cmd, plan, opts.KeyPrefix)
				return nil
			}

			start := time.Now()
			result, err := uploader.Sync(cmd.Context(), local)
			if err != nil {
				return err
			}
			if result.Uploaded > 0 {
				fmt.Fprintln(out, gray.Render(fmt.Sprintf("%d files uploaded in %s", result.Uploaded, time.Since(start).Round(time.Millisecond))))
			}
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringP("root", "r", "", "local asset directory (default \"public\")")
	cmd.Flags().StringP("prefix", "p", "", "key prefix inside the bucket")
	cmd.Flags().IntP("concurrency", "j", 1, "parallel uploads")
	cmd.Flags().String("metrics", "", "write Prometheus metrics to this textfile after the run")
	cmd.Flags().BoolP("dry-run", "n", false, "list what would be uploaded without uploading")
	return cmd
}

func printPlan(cmd *cobra.Command, plan cdn.UploadPlan, prefix string) {
	out := cmd.OutOrStdout()
	if len(plan) == 0 {
		fmt.Fprintln(out, green.Render("No new files to upload."))
		return
	}
	for _, a := range plan {
		key := cdn.ObjectKey(prefix, a.RelPath)
		fmt.Fprintf(out, "%s %s\n", key, gray.Render(humanize.Bytes(uint64(a.Size))))
	}
	fmt.Fprintln(out, cyan.Render(fmt.Sprintf("%d files, %s would be uploaded", len(plan), humanize.Bytes(uint64(plan.TotalSize())))))
}
