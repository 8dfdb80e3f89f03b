package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/flocknet/internal/config"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/injector"
	"github.com/zeusync/flocknet/internal/sim"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "flocknet",
		Short:        "Simulate a drone flock indexed by colour partitions",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML or TOML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newPathCmd(opts))
	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var ticks int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation for a number of ticks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			runner, err := injector.InitializeRunner(cfg)
			if err != nil {
				return err
			}
			if err = runner.Run(cmd.Context(), ticks); err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), runner.Snapshot())
			return nil
		},
	}
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 100, "ticks to run, 0 runs until interrupted")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and stream snapshots over websocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.ListenAddr = addr
			}
			app, err := injector.InitializeApp(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = app.Logger.Sync() }()

			if err = app.Runner.Seed(); err != nil {
				return err
			}
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return app.Runner.Run(ctx, 0) })
			g.Go(func() error { return app.Server.Run(ctx) })

			err = g.Wait()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override server.listen_addr")
	return cmd
}

func newPathCmd(opts *rootOptions) *cobra.Command {
	var (
		from, to int
		ticks    int
		anchor   string
	)
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Seed a flock and print the shortest path between two drones",
		Long: "Seed a flock and print the shortest path between two drones. With --anchor\n" +
			"the target is first found by a search from that partition's anchor drone.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			runner, err := injector.InitializeRunner(cfg)
			if err != nil {
				return err
			}
			if err = runner.Seed(); err != nil {
				return err
			}
			for i := 0; i < ticks; i++ {
				runner.Step()
			}

			var (
				drones []sim.DroneState
				cost   float64
			)
			if anchor != "" {
				colour, perr := models.ParseColour(anchor)
				if perr != nil {
					return perr
				}
				drones, cost, err = runner.PathFromAnchor(colour, models.DroneID(to))
			} else {
				drones, cost, err = runner.ShortestPath(models.DroneID(from), models.DroneID(to))
			}
			if err != nil {
				return err
			}
			printPath(cmd.OutOrStdout(), drones, cost)
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "start drone id")
	cmd.Flags().IntVar(&to, "to", 1, "end drone id")
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 0, "ticks to simulate before the query")
	cmd.Flags().StringVar(&anchor, "anchor", "", "start from the anchor of this colour (red or blue) instead of --from")
	cmd.MarkFlagsMutuallyExclusive("anchor", "from")
	return cmd
}

func printStats(w io.Writer, snap sim.Snapshot) {
	fmt.Fprintf(w, "run %s: %d drones after %d ticks\n", snap.RunID, len(snap.Drones), snap.Tick)
	for _, p := range snap.Partitions {
		fmt.Fprintf(w, "  %-4s drones=%d reachable=%d edges=%d tree_height=%d\n",
			p.Colour, p.Drones, p.Reachable, p.Edges, p.TreeHeight)
	}
	fmt.Fprintf(w, "  events published=%d errors=%d\n", snap.Events.Published, snap.Events.Errors)
}

func printPath(w io.Writer, drones []sim.DroneState, cost float64) {
	names := make([]string, len(drones))
	for i, d := range drones {
		names[i] = fmt.Sprintf("Agent %d", d.ID)
	}
	fmt.Fprintf(w, "%s (%s, cost %.3f)\n", strings.Join(names, " -> "), drones[0].Colour, cost)
}
