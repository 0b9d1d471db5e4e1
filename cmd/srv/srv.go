package main

import (
	"context"
	"net/http"

	"github.com/questx-lab/settlement/internal/address"
	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/domain"
	"github.com/questx-lab/settlement/internal/domain/status"
	"github.com/questx-lab/settlement/internal/repository"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/questx-lab/settlement/pkg/router"
	"github.com/questx-lab/settlement/pkg/xredis"
	"github.com/urfave/cli/v2"
)

type srv struct {
	app *cli.App
	ctx context.Context

	deriver address.Deriver
	builder *client.InstructionBuilder
	caller  client.SettlementCaller

	broker      *pubsub.LocalBroker
	publisher   pubsub.Publisher
	redisClient xredis.Client

	lotteryRepo     repository.LotteryRepository
	accountRepo     repository.AccountRepository
	instructionRepo repository.InstructionRepository

	lotteryDomain domain.LotteryDomain
	accountDomain domain.AccountDomain
	executor      domain.Executor
	statusCache   *status.Cache
	statusReader  client.StatusReader

	router *router.Router
	server *http.Server
}
