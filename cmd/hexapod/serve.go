package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gwillem/hexapod/pkg/metric"
	"github.com/gwillem/hexapod/pkg/server"
)

type ServeCommand struct {
	RobotOptions

	Addr        string        `short:"a" long:"addr" env:"HEXAPOD_ADDR" default:":5000" description:"TCP address for the line protocol"`
	HTTP        string        `long:"http" env:"HEXAPOD_HTTP" description:"Address for /ws, /metrics and /healthz (disabled when empty)"`
	NATS        string        `long:"nats" env:"HEXAPOD_NATS" description:"NATS server URL (disabled when empty)"`
	Subject     string        `long:"subject" default:"hexapod.commands" description:"NATS request subject"`
	IdleTimeout time.Duration `long:"idle-timeout" default:"300s" description:"Close idle TCP sessions after this long"`
	Wakeup      bool          `long:"wakeup" description:"Play the start-up pose before serving"`
}

func (c *ServeCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := c.open()
	if err != nil {
		return err
	}
	defer r.Close()
	log.WithField("profile", r.Profile()).WithField("config", c.Config).Info("robot loaded")

	reg := metric.NewRegistry()
	d, err := c.dispatcher(r, reg.Metrics)
	if err != nil {
		return err
	}

	if c.Wakeup {
		out, err := d.Wakeup(ctx)
		if err != nil {
			return err
		}
		log.WithField("duration", out.Duration).Info("wakeup done")
	}

	httpErr := make(chan error, 1)

	if c.HTTP != "" {
		srv := &http.Server{
			Addr:              c.HTTP,
			Handler:           server.NewMux(d, reg),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.WithField("addr", c.HTTP).Info("http server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				httpErr <- err
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if c.NATS != "" {
		nr, err := server.ListenNATS(ctx, c.NATS, c.Subject, d, reg.Metrics)
		if err != nil {
			return err
		}
		defer nr.Close()
	}

	tcp := server.NewTCPServer(d, reg.Metrics)
	tcp.IdleTimeout = c.IdleTimeout
	tcpDone := make(chan error, 1)
	go func() {
		tcpDone <- tcp.ListenAndServe(ctx, c.Addr)
	}()

	// The TCP server returns once running commands finish, so the robot is
	// only closed after the last maneuver.
	select {
	case err := <-httpErr:
		stop()
		<-tcpDone
		return err
	case err := <-tcpDone:
		if err == nil {
			log.Info("shut down")
		}
		return err
	}
}
