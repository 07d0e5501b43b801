package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animus-labs/animus-baseline/internal/runs"
)

func newClusterCmd(a *app) *cobra.Command {
	cfg := runs.ClusterCfg{}
	cmd := &cobra.Command{
		Use:   "cluster FEATURES",
		Short: "Fit k-means over a features table and write a kmeans run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.FeaturesPath = args[0]
			cfg.Root = a.rootOr("")
			res, err := runs.New(a.fs, a.logger).Cluster(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s inertia=%.4f sizes=%v\n", res.Run.ID, res.Inertia, res.Sizes)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVarP(&cfg.K, "clusters", "k", 3, "number of clusters")
	fl.Int64Var(&cfg.Seed, "seed", 42, "random seed")
	fl.IntVar(&cfg.MaxIter, "max-iter", 300, "iteration cap")
	fl.StringSliceVar(&cfg.IDCols, "id-cols", []string{"id"}, "identifier columns kept in the assignments table")
	fl.StringSliceVar(&cfg.Exclude, "exclude", nil, "columns left out of the features, such as a target")
	return cmd
}
