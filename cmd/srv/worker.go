package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/domain/cron"
	"github.com/questx-lab/settlement/internal/domain/oracle"
	"github.com/questx-lab/settlement/pkg/crypto"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const statusGroupID = "settlement-status"

// startWorkers runs the status cache and, if asked, the oracle and the keeper
// next to the api. They call the executor directly.
func (s *srv) startWorkers(ctx context.Context, g *errgroup.Group, withOracle, withKeeper bool) error {
	cfg := xcontext.Configs(s.ctx)

	if s.statusCache != nil {
		if _, err := s.statusCache.Refresh(ctx); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot warm up settlement status: %v", err)
		}

		if err := s.subscribe(ctx, g, statusGroupID, s.statusCache.Subscribe); err != nil {
			return err
		}
	}

	if withOracle {
		o, err := s.newOracle(s.executor)
		if err != nil {
			return err
		}

		if err := s.subscribe(ctx, g, cfg.Kafka.GroupID, o.Subscribe); err != nil {
			return err
		}
	}

	if withKeeper {
		manager, err := s.newKeeper(s.executor, s.lotteryDomain)
		if err != nil {
			return err
		}

		g.Go(func() error {
			manager.Start(ctx)
			return nil
		})
	}

	return nil
}

func (s *srv) startOracle(cctx *cli.Context) error {
	o, err := s.newOracle(s.caller)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if err := s.subscribe(ctx, g, xcontext.Configs(s.ctx).Kafka.GroupID, o.Subscribe); err != nil {
		return err
	}

	xcontext.Logger(ctx).Infof("Oracle started")
	return g.Wait()
}

func (s *srv) startKeeper(cctx *cli.Context) error {
	manager, err := s.newKeeper(s.caller, s.caller)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager.Start(ctx)
	return nil
}

func (s *srv) newOracle(submitter client.Submitter) (*oracle.Oracle, error) {
	key, err := crypto.ParsePrivateKey(xcontext.Configs(s.ctx).Oracle.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle key: %w", err)
	}

	return oracle.New(submitter, s.builder, oracle.NewRandomSource(), key), nil
}

func (s *srv) newKeeper(submitter client.Submitter, reader client.StatusReader) (*cron.CronJobManager, error) {
	cfg := xcontext.Configs(s.ctx)
	key, err := crypto.ParsePrivateKey(cfg.Lottery.AuthorityKey)
	if err != nil {
		return nil, fmt.Errorf("invalid authority key: %w", err)
	}

	manager := cron.NewCronJobManager()
	manager.Register(cron.NewDrawKeeperCronJob(submitter, reader, s.builder, key, cfg.Keeper.Interval.Duration))
	return manager, nil
}

// subscribe starts a subscriber and stops it when ctx is done.
func (s *srv) subscribe(
	ctx context.Context, g *errgroup.Group, groupID string, handler pubsub.SubscribeHandler,
) error {
	subscriber, err := s.newSubscriber(groupID, handler)
	if err != nil {
		return err
	}

	subscriber.Subscribe(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return subscriber.Stop(context.Background())
	})

	return nil
}
