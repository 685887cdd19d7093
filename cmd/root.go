// Package cmd implements the CLI surface described in §6, built with
// spf13/cobra in the teacher's style (cmd/root.go).
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ransim/ransim/internal/config"
	"github.com/ransim/ransim/sim"
)

var (
	seedOverride int64
	logOverride  string
)

var rootCmd = &cobra.Command{
	Use:   "ransim",
	Short: "Discrete-event simulator for a sliced radio access network",
}

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run a simulation from a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}

		logLevelName := cfg.LogLevelOrDefault()
		if logOverride != "" {
			logLevelName = logOverride
		}
		level, err := logrus.ParseLevel(logLevelName)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		seed := cfg.Settings.Seed
		if cmd.Flags().Changed("seed") {
			seed = seedOverride
		}

		logrus.Infof("starting ransim: clients=%d base_stations=%d horizon=%d seed=%d",
			cfg.Settings.NumClients, len(cfg.BaseStations), cfg.Settings.SimulationTime, seed)

		s, err := sim.Build(cfg, seed)
		if err != nil {
			return err
		}
		s.Run()
		sim.NewReport(s).Print(os.Stdout)
		logrus.Info("simulation complete")
		return nil
	},
}

// Execute runs the root command, exiting non-zero on any returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().Int64Var(&seedOverride, "seed", 0, "override settings.seed from the configuration file")
	runCmd.Flags().StringVar(&logOverride, "log", "", "override settings.log_level from the configuration file")
	rootCmd.AddCommand(runCmd)
}
