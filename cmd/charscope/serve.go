package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/nihei9/charscope/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the decoder over FastCGI or HTTP",
		Example: `  charscope serve --unicode-data UnicodeData.txt
  charscope serve --protocol http --listen 127.0.0.1:8080 --metrics`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("listen", server.DefaultAddress, "address to listen on")
	cmd.Flags().String("protocol", protocolFastCGI, fmt.Sprintf("protocol to serve (%v or %v)", protocolFastCGI, protocolHTTP))
	cmd.Flags().Int64("max-payload", server.DefaultMaxPayload, "maximum request body size in bytes")
	cmd.Flags().Bool("metrics", false, "serve Prometheus metrics on GET /metrics")
	rootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	d, err := c.newDispatcher()
	if err != nil {
		return fmt.Errorf("cannot set up the decoder: %w", err)
	}

	opts := []server.ServerOption{
		server.MaxPayload(c.MaxPayload),
	}
	if c.Metrics {
		opts = append(opts, server.EnableMetrics())
	}
	s, err := server.New(d, opts...)
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", c.Listen)
	if err != nil {
		return fmt.Errorf("cannot listen on %v: %w", c.Listen, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	glog.Infof("serving %v on %v (engines: %v, parallel: %v, metrics: %v)", c.Protocol, l.Addr(), d.Engines(), c.Parallel, c.Metrics)
	switch c.Protocol {
	case protocolHTTP:
		err = s.ServePlain(ctx, l)
	default:
		err = s.ServeFastCGI(ctx, l)
	}
	if err != nil {
		return err
	}
	glog.Infof("stopped serving on %v", l.Addr())
	return nil
}
