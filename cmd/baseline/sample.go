package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animus-labs/animus-baseline/internal/paths"
	"github.com/animus-labs/animus-baseline/internal/sampledata"
)

func newSampleCmd(a *app) *cobra.Command {
	var (
		users int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic features table to data/processed/features.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := sampledata.Write(a.fs, paths.FromRoot(a.rootOr("")), users, seed)
			if err != nil {
				return err
			}
			a.logger.Info("sample data written", "path", out, "users", users, "seed", seed)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", sampledata.DefaultUsers, "number of rows")
	cmd.Flags().Int64Var(&seed, "seed", sampledata.DefaultSeed, "random seed")
	return cmd
}
