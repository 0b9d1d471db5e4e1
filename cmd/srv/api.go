package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/settlement/pkg/router"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func (s *srv) startApi(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadPublisher(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	s.loadRepos()
	if err := s.loadDomains(); err != nil {
		return err
	}
	s.loadRouter()

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if err := s.startWorkers(ctx, g, cctx.Bool("with-oracle"), cctx.Bool("with-keeper")); err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx).ApiServer
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:           s.router.Handler(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		xcontext.Logger(ctx).Infof("Starting server on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	xcontext.Logger(s.ctx).Infof("Server stopped")
	return err
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)

	router.POST(s.router, "/submitInstruction", s.executor.Submit)
	router.GET(s.router, "/getSettlementStatus", s.statusReader.GetSettlementStatus)
	router.GET(s.router, "/getBalance", s.accountDomain.GetBalance)

	// Balances of real deployments are credited by the bridge, not by hand.
	if xcontext.Configs(s.ctx).Env == "local" {
		router.POST(s.router, "/fund", s.accountDomain.Fund)
	}
}
