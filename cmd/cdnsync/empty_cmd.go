package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/spf13/cobra"
)

var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd())
}

func newEmptyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "empty",
		Short: "Delete every object in the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := prepare(cmd, true)
			if err != nil {
				return err
			}

			scope, _ := cmd.Flags().GetString("scope")
			yes, _ := cmd.Flags().GetBool("yes")

			if !yes {
				ok, err := confirmEmpty(cmd, cfg.Bucket, scope)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), gray.Render("Aborted."))
					return nil
				}
			}

			r, err := newRun(cmd.Context(), cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer r.Close()

			_, err = cdn.NewPurger(r.store, r.sink).Purge(cmd.Context(), cfg.Bucket, scope)
			return err
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().String("scope", "", "only delete keys under this prefix")
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirmEmpty(cmd *cobra.Command, bucket, scope string) (bool, error) {
	if !isInteractive() {
		return false, fmt.Errorf("%w: refusing to empty bucket %q without --yes", cdn.ErrConfiguration, bucket)
	}

	target := bucket
	if scope != "" {
		target = bucket + "/" + scope
	}
	fmt.Fprint(cmd.OutOrStdout(), red.Render(fmt.Sprintf("Delete every object in %s? [y/N]: ", target)))

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
