package app

import (
	"fmt"
	"strings"

	"github.com/smallnest/pitchgraph/templates"
	"github.com/spf13/cobra"
)

func newTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates [id]",
		Short: "List the artifact templates, or show one with its guiding questions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				t, err := templates.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, titleStyle.Render(t.Title)+" "+mutedStyle.Render(t.Description))
				for _, g := range t.Prompts {
					fmt.Fprintln(out, g.Heading)
					for _, q := range g.Questions {
						fmt.Fprintln(out, "  - "+q)
					}
				}
				return nil
			}

			ts, err := templates.All()
			if err != nil {
				return err
			}
			width := 0
			for _, t := range ts {
				width = max(width, len(t.ID))
			}
			for _, t := range ts {
				fmt.Fprintf(out, "%s  %s\n", titleStyle.Render(t.ID+strings.Repeat(" ", width-len(t.ID))), t.Title)
			}
			return nil
		},
	}
}
