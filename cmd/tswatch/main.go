// Command tswatch compiles TypeScript files as they change.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fredrikaverpil/tswatch"
	"github.com/fredrikaverpil/tswatch/config"
	"github.com/fredrikaverpil/tswatch/internal/app"
	"github.com/fredrikaverpil/tswatch/watch"
	"github.com/spf13/cobra"
)

var (
	configFile     string
	watchDirectory string
	verifyOnly     bool
)

var rootCmd = &cobra.Command{
	Use:   "tswatch",
	Short: "compile TypeScript files as they change",
	Long: `tswatch watches a directory tree and compiles changed TypeScript files to
JavaScript. Removing a source file removes its generated file.

Configure it with a tswatch.yaml file:

  input: src
  output: lib
  sourceMap: true
  watch:
    - ^test/(.+\.ts)$`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runWatch,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "compile files as they change (default)",
	RunE:  runWatch,
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "compile all watched files once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, _, err := load()
		if err != nil {
			return err
		}
		return g.RunAll(cmd.Context())
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "remove generated files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, _, err := load()
		if err != nil {
			return err
		}
		return g.CleanAll(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default "+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVarP(&watchDirectory, "dir", "d", "", "project directory. defaults to working directory")
	rootCmd.PersistentFlags().BoolVar(&verifyOnly, "verify", false, "compile without writing output")
	rootCmd.AddCommand(watchCmd, compileCmd, cleanCmd)
}

// setup changes to the project directory, which all paths are relative to.
func setup(*cobra.Command, []string) error {
	if watchDirectory == "" {
		return nil
	}
	if err := os.Chdir(watchDirectory); err != nil {
		return fmt.Errorf("changing to project directory: %w", err)
	}
	return nil
}

var out = tswatch.StdOutput().Locked()

func load() (*tswatch.Guard, config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, config.Config{}, err
	}
	if verifyOnly {
		cfg.VerifyOnly = true
	}
	g, err := app.NewGuard(cfg, out, app.Colored())
	if err != nil {
		return nil, config.Config{}, err
	}
	return g, cfg, nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	g, cfg, err := load()
	if err != nil {
		return err
	}

	w, err := watch.New(app.WatchConfig(cfg, out), g)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := g.Start(ctx); err != nil && !errors.Is(err, tswatch.ErrTaskFailed) {
		w.Close()
		return err
	}
	out.Println("Watching for changes. Press Ctrl+C to stop.")
	return w.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// Failed compilations have already been reported.
		if !errors.Is(err, tswatch.ErrTaskFailed) {
			fmt.Fprintf(os.Stderr, "tswatch: %v\n", err)
		}
		os.Exit(1)
	}
}
