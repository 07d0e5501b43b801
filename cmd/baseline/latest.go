package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animus-labs/animus-baseline/internal/paths"
	"github.com/animus-labs/animus-baseline/internal/runs"
)

func newLatestCmd(a *app) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the id of the most recent successful run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := a.rootOr("")
			id, err := runs.Latest(a.fs, root)
			if errors.Is(err, runs.ErrNoRuns) {
				return fmt.Errorf("%w under %s", err, root)
			}
			if err != nil {
				return err
			}
			if verify {
				manifest, err := runs.NewMaterializer(a.fs, paths.FromRoot(root).Runs, a.logger).ReadManifest(id)
				if err != nil {
					return err
				}
				if err := manifest.Verify(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "check the run manifest integrity")
	return cmd
}
