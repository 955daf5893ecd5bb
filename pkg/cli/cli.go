// Package cli wires configuration, probes, the InfluxDB sink and the
// optional status server into the hostalive command.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kylerisse/hostalive/pkg/check/ping"
	"github.com/kylerisse/hostalive/pkg/config"
	"github.com/kylerisse/hostalive/pkg/poller"
	"github.com/kylerisse/hostalive/pkg/server"
	"github.com/kylerisse/hostalive/pkg/sink"
)

// Args holds the command-line flags.
type Args struct {
	Configuration string
	Debug         bool
	Interval      int
	Listen        string
}

// SetupRootCommand builds the hostalive command.
func SetupRootCommand() *cobra.Command {
	args := &Args{}
	command := &cobra.Command{
		Use:           "hostalive",
		Short:         "ping a list of hosts periodically and record their reachability in InfluxDB",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, as []string) error {
			return RunRootCommand(cmd.Context(), args, cmd.ErrOrStderr())
		},
	}

	command.PersistentFlags().StringVarP(&args.Configuration, "configuration", "c", config.DefaultPath, "path to the JSON configuration file")
	command.PersistentFlags().BoolVarP(&args.Debug, "debug", "d", false, "enable debug logging")

	command.Flags().IntVarP(&args.Interval, "time", "t", 30, "seconds to wait between two updates")
	command.Flags().StringVar(&args.Listen, "listen", "", "address for the status endpoint (e.g. :1982); overrides the configuration, empty disables it")

	command.AddCommand(setupCheckCommand(args))

	return command
}

// RunRootCommand loads the configuration and polls until ctx is cancelled
// or the process receives SIGINT/SIGTERM.
func RunRootCommand(ctx context.Context, args *Args, logOut io.Writer) error {
	logger := newLogger(args.Debug, logOut)

	if args.Interval < 1 {
		return errors.Errorf("time must be at least 1 second, got %d", args.Interval)
	}

	cfg, err := config.Load(args.Configuration)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d host(s) from %s", len(cfg.Hosts), args.Configuration)

	targets, err := buildTargets(cfg)
	if err != nil {
		return err
	}

	listen := cfg.Listen
	if args.Listen != "" {
		listen = args.Listen
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var opts []poller.Option
	if listen != "" {
		srv := server.NewServer(listen, cfg.Hosts, logger)
		opts = append(opts, poller.WithObserver(srv))
		g.Go(func() error {
			return srv.ListenAndServe(gctx)
		})
	}

	snk := sink.NewInfluxDB(cfg.InfluxDB.Sink(), logger)
	p, err := poller.New(targets, snk, time.Duration(args.Interval)*time.Second, logger, opts...)
	if err != nil {
		stop()
		_ = g.Wait()
		return err
	}

	g.Go(func() error {
		return p.Run(gctx)
	})

	err = g.Wait()
	if ctx.Err() != nil {
		logger.Info("Shutting down.")
		return nil
	}
	return err
}

// buildTargets creates one ping check per configured host.
func buildTargets(cfg *config.Config) ([]poller.Target, error) {
	opts := []ping.Option{
		ping.WithTTL(cfg.Probe.TTL),
		ping.WithCommand(cfg.Probe.Command),
	}
	if cfg.Probe.Timeout > 0 {
		opts = append(opts, ping.WithTimeout(cfg.Probe.Timeout))
	}

	targets := make([]poller.Target, 0, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		chk, err := ping.New(h.Target(), opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "host %s", h.Name)
		}
		targets = append(targets, poller.Target{Host: h, Check: chk})
	}
	return targets, nil
}

func newLogger(debug bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}
