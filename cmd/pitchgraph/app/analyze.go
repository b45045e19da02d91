package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/store"
	"github.com/spf13/cobra"
)

type analyzeFlags struct {
	panel     bool
	file      string
	serverURL string
}

func newAnalyzeCommand(rf *rootFlags) *cobra.Command {
	af := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Assess a pitch locally or through a running server",
		Long: `Assess a pitch. The pitch is read from --file, from the arguments, or
from stdin when neither is given. Editor HTML and plain text are both accepted.

With --panel the five analyst roles each write their own assessment.
With --server the pitch is sent to a running pitchgraph server instead of
being analyzed in this process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd, af.file, args)
			if err != nil {
				return err
			}
			if af.serverURL != "" {
				return af.runRemote(cmd, rf, prompt)
			}
			return af.runLocal(cmd, rf, prompt)
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&af.panel, "panel", false, "Run the five-analyst panel instead of the single assessment.")
	fs.StringVarP(&af.file, "file", "f", "", "Read the pitch from this file.")
	fs.StringVar(&af.serverURL, "server", "", "Base URL of a running pitchgraph server, e.g. http://localhost:8000.")
	return cmd
}

func readPrompt(cmd *cobra.Command, file string, args []string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read pitch: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read pitch from stdin: %w", err)
		}
		return string(data), nil
	}
}

func (af *analyzeFlags) runRemote(cmd *cobra.Command, rf *rootFlags, prompt string) error {
	ctx := commandContext(cmd)
	c := newClient(af.serverURL, rf.opts.Server.RequestTimeout)
	out := cmd.OutOrStdout()

	if af.panel {
		res, err := c.panel(ctx, prompt)
		if err != nil {
			return err
		}
		printPanel(out, res.Sections, res.Coverage, res.ID)
		return nil
	}

	res, err := c.view(ctx, prompt)
	if err != nil {
		return err
	}
	printAssessment(out, res.Analysis, res.Probability, res.Coverage, res.ID)
	return nil
}

func (af *analyzeFlags) runLocal(cmd *cobra.Command, rf *rootFlags, prompt string) (err error) {
	ctx, cancel := context.WithTimeout(commandContext(cmd), rf.opts.Server.RequestTimeout)
	defer cancel()

	rt, err := newRuntime(ctx, rf.opts, rf.models)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, rt.Close())
	}()

	out := cmd.OutOrStdout()
	if af.panel {
		res, err := rt.panel.Run(ctx, prompt)
		if err != nil {
			return err
		}
		report := store.NewReport(store.KindPanel, prompt)
		report.Sections = res.Sections
		report.Coverage = res.Coverage
		report.Chunks = res.Chunks
		report.ElapsedMS = res.Elapsed.Milliseconds()
		printPanel(out, res.Sections, res.Coverage, saveReport(ctx, rt.reports, report))
		return nil
	}

	res, err := rt.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return err
	}
	report := store.NewReport(store.KindView, prompt)
	report.Analysis = res.Text
	report.Probability = res.Probability
	report.Coverage = res.Coverage
	report.Chunks = res.Chunks
	report.ElapsedMS = res.Elapsed.Milliseconds()
	printAssessment(out, res.Text, res.Probability, res.Coverage, saveReport(ctx, rt.reports, report))
	return nil
}

func saveReport(ctx context.Context, reports store.ReportStore, report *store.Report) string {
	if err := reports.Save(context.WithoutCancel(ctx), report); err != nil {
		log.Warn("failed to save report: %v", err)
		return ""
	}
	return report.ID
}
