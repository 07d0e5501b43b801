package main

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs. logger is built once flags are
// parsed.
type app struct {
	fs      afero.Fs
	logOut  io.Writer
	logger  *slog.Logger
	verbose bool
	root    string
}

func newRootCmd(fs afero.Fs, logOut io.Writer) *cobra.Command {
	a := &app{fs: fs, logOut: logOut}
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Train and register reproducible baseline models on tabular data",
		Long: `baseline turns a features table into a versioned run directory holding
the schema contract, environment snapshot, holdout metrics and a majority-class
model, then points models/registry/latest.txt at it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{Level: level}))
		},
	}
	cmd.SetErr(logOut)
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")
	cmd.PersistentFlags().StringVar(&a.root, "root", "", "project root holding data/ and models/ (default from config or .)")

	cmd.AddCommand(
		newTrainCmd(a),
		newSampleCmd(a),
		newClusterCmd(a),
		newLatestCmd(a),
	)
	return cmd
}

// rootOr returns the --root flag when it was given.
func (a *app) rootOr(def string) string {
	if a.root != "" {
		return a.root
	}
	if def == "" {
		return "."
	}
	return def
}
