package main

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"

	"github.com/questx-lab/settlement/config"
	"github.com/questx-lab/settlement/internal/address"
	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/domain"
	"github.com/questx-lab/settlement/internal/domain/status"
	"github.com/questx-lab/settlement/internal/repository"
	"github.com/questx-lab/settlement/migration"
	"github.com/questx-lab/settlement/pkg/crypto"
	"github.com/questx-lab/settlement/pkg/idutil"
	"github.com/questx-lab/settlement/pkg/kafka"
	"github.com/questx-lab/settlement/pkg/logger"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/questx-lab/settlement/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	s.ctx = xcontext.WithConfigs(cctx.Context, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel), cfg.Env != "local"))

	s.deriver = address.New(cfg.Lottery.ProgramID)
	s.builder = client.NewInstructionBuilder(s.deriver)

	endpoint := cctx.String("endpoint")
	if endpoint == "" {
		endpoint = fmt.Sprintf("http://%s:%s", cfg.ApiServer.Host, cfg.ApiServer.Port)
	}
	s.caller = client.NewSettlementCaller(endpoint)

	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.File)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return migration.Migrate(s.ctx)
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		xcontext.Logger(s.ctx).Infof("Kafka is not configured, events are delivered in process")
		s.broker = pubsub.NewLocalBroker()
		s.publisher = s.broker
		return nil
	}

	publisher, err := kafka.NewPublisher(idutil.NewRequestID(), []string{cfg.Addr})
	if err != nil {
		return fmt.Errorf("cannot connect to kafka: %w", err)
	}

	s.publisher = publisher
	return nil
}

// newSubscriber subscribes handler to the settlement events. Every group
// receives every event.
func (s *srv) newSubscriber(groupID string, handler pubsub.SubscribeHandler) (pubsub.Subscriber, error) {
	cfg := xcontext.Configs(s.ctx).Kafka
	if s.broker != nil {
		return s.broker.NewSubscriber([]string{cfg.Topic}, handler), nil
	}

	if cfg.Addr == "" {
		return nil, errors.New("kafka is not configured")
	}

	return kafka.NewSubscriber(groupID, []string{cfg.Addr}, []string{cfg.Topic}, handler)
}

// loadRedisClient leaves the status cache disabled if Redis is not configured.
func (s *srv) loadRedisClient() error {
	if xcontext.Configs(s.ctx).Redis.Addr == "" {
		return nil
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		return fmt.Errorf("cannot connect to redis: %w", err)
	}

	s.redisClient = redisClient
	return nil
}

func (s *srv) loadRepos() {
	s.lotteryRepo = repository.NewLotteryRepository()
	s.accountRepo = repository.NewAccountRepository()
	s.instructionRepo = repository.NewInstructionRepository()
}

func (s *srv) loadDomains() error {
	idGenerator, err := idutil.NewGenerator(xcontext.Configs(s.ctx).ApiServer.NodeID)
	if err != nil {
		return err
	}

	lotteryDomain := domain.NewLotteryDomain(s.lotteryRepo, s.accountRepo, s.deriver)
	s.lotteryDomain = lotteryDomain
	s.accountDomain = domain.NewAccountDomain(s.accountRepo)
	s.executor = domain.NewExecutor(lotteryDomain, s.instructionRepo, s.publisher, idGenerator)

	s.statusReader = lotteryDomain
	if s.redisClient != nil {
		s.statusCache = status.NewCache(lotteryDomain, s.redisClient)
		s.statusReader = s.statusCache
	}

	return nil
}

// signingKey returns the --key flag, or fallback when the flag is not set.
func signingKey(cctx *cli.Context, fallback string) (*ecdsa.PrivateKey, error) {
	key := cctx.String("key")
	if key == "" {
		key = fallback
	}

	if key == "" {
		return nil, errors.New("no signing key, set --key or the key in the config")
	}

	return crypto.ParsePrivateKey(key)
}
