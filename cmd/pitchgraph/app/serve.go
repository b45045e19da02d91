package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/server"
	"github.com/spf13/cobra"
)

func newServeCommand(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime(ctx, rf.opts, nil)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					log.Warn("close: %v", err)
				}
			}()

			o := rf.opts.Server
			srv := server.New(server.Config{
				Addr:            o.Addr,
				Mode:            o.Mode,
				RequestTimeout:  o.RequestTimeout,
				ShutdownTimeout: o.ShutdownTimeout,
				AllowOrigins:    o.AllowOrigins,
			}, rt.analyzer, rt.panel, rt.reports, log.Named(nil, "http"))

			return srv.Run(ctx)
		},
	}
}

// commandContext returns the command's context, or Background when RunE is
// invoked outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
