package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/nodeflow/cmd/nodeflow/internal/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configPath string
	logLevel   string
}

// load reads the config named by --config, or the first config file in the
// working directory. It returns the path that was read, "" for defaults.
func (o *rootOptions) load() (*config.Config, string, error) {
	path := o.configPath
	if path == "" {
		path = config.Find(".")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, path, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "nodeflow",
		Short: "nodeflow - a node-graph editor",
		Long: `nodeflow is a node-graph editor: spawn value and operation nodes from a
searchable palette, drag them around a pannable, zoomable canvas and wire
outputs to inputs.

The editor runs in the browser (serve) or in the terminal (tui).`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: nodeflow.yaml, nodeflow.yml or nodeflow.toml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newTUICommand(opts))
	rootCmd.AddCommand(newCatalogCommand())
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
