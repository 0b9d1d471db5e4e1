package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/settlement/internal/domain"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/internal/repository"
	"github.com/questx-lab/settlement/pkg/crypto"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startInitialize(cctx *cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	key, err := signingKey(cctx, cfg.Lottery.AuthorityKey)
	if err != nil {
		return err
	}

	if !common.IsHexAddress(cfg.Lottery.PlatformWallet) {
		return fmt.Errorf("invalid platform wallet %q", cfg.Lottery.PlatformWallet)
	}

	endtime := cctx.Int64("endtime")
	if endtime == 0 {
		endtime = time.Now().Add(cfg.Lottery.RoundDuration.Duration).Unix()
	}

	args := model.InitializeArgs{
		PlatformWallet:      common.HexToAddress(cfg.Lottery.PlatformWallet),
		TicketPrice:         cfg.Lottery.TicketPrice,
		PlatformFeeBps:      cfg.Lottery.PlatformFeeBps,
		FirstLotteryEndtime: endtime,
		RoundDuration:       int64(cfg.Lottery.RoundDuration.Seconds()),
	}

	switch {
	case cctx.IsSet("oracle"):
		if !common.IsHexAddress(cctx.String("oracle")) {
			return fmt.Errorf("invalid oracle address %q", cctx.String("oracle"))
		}
		args.Oracle = common.HexToAddress(cctx.String("oracle"))

	case cfg.Oracle.Key != "":
		oracleKey, err := crypto.ParsePrivateKey(cfg.Oracle.Key)
		if err != nil {
			return fmt.Errorf("invalid oracle key: %w", err)
		}
		args.Oracle = ethcrypto.PubkeyToAddress(oracleKey.PublicKey)
	}

	return s.submit(s.builder.Initialize(key, args))
}

func (s *srv) startEnter(cctx *cli.Context) error {
	key, err := signingKey(cctx, "")
	if err != nil {
		return err
	}

	status, err := s.status("")
	if err != nil {
		return err
	}

	return s.submit(s.builder.EnterLottery(key, status.LotteryID, status.TotalParticipants))
}

func (s *srv) startRequestDraw(cctx *cli.Context) error {
	key, err := signingKey(cctx, xcontext.Configs(s.ctx).Lottery.AuthorityKey)
	if err != nil {
		return err
	}

	return s.submit(s.builder.RequestDraw(key))
}

func (s *srv) startResolveDraw(cctx *cli.Context) error {
	key, err := signingKey(cctx, xcontext.Configs(s.ctx).Oracle.Key)
	if err != nil {
		return err
	}

	status, err := s.status("")
	if err != nil {
		return err
	}

	return s.submit(s.builder.ResolveDraw(key, status.LotteryID, cctx.Uint64("index")))
}

func (s *srv) startPayout(cctx *cli.Context) error {
	key, err := signingKey(cctx, xcontext.Configs(s.ctx).Lottery.AuthorityKey)
	if err != nil {
		return err
	}

	status, err := s.status("")
	if err != nil {
		return err
	}

	if status.Winner == 0 || status.WinnerLotteryID != status.LotteryID {
		return fmt.Errorf("lottery #%d is not resolved", status.LotteryID)
	}

	return s.submit(s.builder.Payout(
		key,
		common.HexToAddress(status.PlatformWallet),
		common.HexToAddress(status.WinnerAddress),
		status.LotteryID,
		status.Winner,
	))
}

func (s *srv) startReset(cctx *cli.Context) error {
	key, err := signingKey(cctx, xcontext.Configs(s.ctx).Lottery.AuthorityKey)
	if err != nil {
		return err
	}

	args := model.ResetArgs{LotteryEndtime: cctx.Int64("endtime")}
	if cctx.IsSet("ticket-price") {
		price := cctx.Uint64("ticket-price")
		args.TicketPrice = &price
	}

	if cctx.IsSet("fee-bps") {
		if cctx.Uint("fee-bps") > math.MaxUint16 {
			return errors.New("fee-bps is too large")
		}

		fee := uint16(cctx.Uint("fee-bps"))
		args.PlatformFeeBps = &fee
	}

	return s.submit(s.builder.Reset(key, args))
}

func (s *srv) startStatus(cctx *cli.Context) error {
	resp, err := s.caller.GetSettlementStatus(s.ctx, &model.GetSettlementStatusRequest{
		User: cctx.String("user"),
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

// startFund writes to the database directly, the api only exposes it for
// local deployments.
func (s *srv) startFund(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	accountDomain := domain.NewAccountDomain(repository.NewAccountRepository())
	resp, err := accountDomain.Fund(s.ctx, &model.FundRequest{
		Address: cctx.String("address"),
		Amount:  cctx.Uint64("amount"),
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func (s *srv) status(user string) (*model.GetSettlementStatusResponse, error) {
	status, err := s.caller.GetSettlementStatus(s.ctx, &model.GetSettlementStatusRequest{User: user})
	if err != nil {
		return nil, fmt.Errorf("cannot get settlement status: %w", err)
	}

	if !status.Initialized {
		return nil, errors.New("lottery is not initialized")
	}

	return status, nil
}

func (s *srv) submit(ins *model.Instruction, err error) error {
	if err != nil {
		return fmt.Errorf("cannot build instruction: %w", err)
	}

	resp, err := s.caller.Submit(s.ctx, ins)
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(b))
	return nil
}
