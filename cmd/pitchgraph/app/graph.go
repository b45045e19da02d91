package app

import (
	"fmt"

	"github.com/smallnest/pitchgraph/analysis"
	"github.com/smallnest/pitchgraph/graph"
	"github.com/spf13/cobra"
)

func newGraphCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the analyst panel graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := analysis.NewPanel(nil, nil, analysis.DefaultOptions()).Diagram(format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", graph.FormatMermaid, "Diagram format: mermaid, dot or ascii.")
	return cmd
}
