// Package app wires the pitchgraph commands.
package app

import (
	"fmt"

	"github.com/smallnest/pitchgraph/config"
	"github.com/smallnest/pitchgraph/llms/provider"
	"github.com/smallnest/pitchgraph/log"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile string
	envFiles   []string
	opts       *config.Options

	// models overrides the configured provider; tests set it.
	models provider.Source
}

// NewRootCommand returns the pitchgraph command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootFlags{opts: config.NewOptions()})
}

func newRootCommand(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pitchgraph",
		Short:         "Predict startup success from a pitch document",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rf.load(cmd)
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&rf.configFile, "config", "c", "", "Path to a YAML, JSON or TOML config file.")
	fs.StringSliceVar(&rf.envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment.")
	rf.opts.AddFlags(fs)

	cmd.AddCommand(newServeCommand(rf), newAnalyzeCommand(rf), newTemplatesCommand(), newGraphCommand())
	return cmd
}

func (rf *rootFlags) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(rf.envFiles...); err != nil {
		return err
	}
	if err := config.Load(rf.opts, cmd.Flags(), rf.configFile); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := log.ParseLevel(rf.opts.Log.Level)
	if err != nil {
		return err
	}
	log.SetDefaultLogger(log.New(level))
	return nil
}
