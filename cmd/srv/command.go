package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "settlement"
	app.Usage = "Ticket-based lottery settlement"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "TOML config file, defaults are used when empty",
			EnvVars: []string{"SETTLEMENT_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "API server used by the client commands, defaults to the configured api server",
		},
	}
	app.Before = s.loadConfig

	keyFlag := &cli.StringFlag{
		Name:  "key",
		Usage: "Hex private key of the signer, defaults to the configured key",
	}

	app.Commands = []*cli.Command{
		{
			Action:   s.startApi,
			Name:     "api",
			Usage:    "Start the settlement api",
			Category: "Service",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "with-oracle", Usage: "Resolve draws in the same process"},
				&cli.BoolFlag{Name: "with-keeper", Usage: "Drive draws and payouts in the same process"},
			},
			Description: `Serves /submitInstruction and /getSettlementStatus. Events are published
to kafka when kafka.addr is set, otherwise to the in-process broker.`,
		},
		{
			Action:      s.startOracle,
			Name:        "oracle",
			Usage:       "Start the randomness oracle",
			Category:    "Service",
			Description: `Consumes draw requests from kafka and submits the winning index.`,
		},
		{
			Action:      s.startKeeper,
			Name:        "keeper",
			Usage:       "Start the draw keeper",
			Category:    "Service",
			Description: `Requests the draw of ended rounds and pays resolved ones.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Service",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "version", Usage: "Run only this version"},
			},
		},
		{
			Action:   s.startInitialize,
			Name:     "init",
			Usage:    "Initialize the lottery from the configured values",
			Category: "Instruction",
			Flags: []cli.Flag{
				keyFlag,
				&cli.Int64Flag{Name: "endtime", Usage: "Unix end time of the first round"},
				&cli.StringFlag{Name: "oracle", Usage: "Oracle address, defaults to the oracle key or the authority"},
			},
		},
		{
			Action:   s.startEnter,
			Name:     "enter",
			Usage:    "Buy a ticket of the current round",
			Category: "Instruction",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "key", Usage: "Hex private key of the user", Required: true},
			},
		},
		{
			Action:   s.startRequestDraw,
			Name:     "draw",
			Usage:    "Request the draw of the ended round",
			Category: "Instruction",
			Flags:    []cli.Flag{keyFlag},
		},
		{
			Action:   s.startResolveDraw,
			Name:     "resolve",
			Usage:    "Resolve the draw with the given winning index",
			Category: "Instruction",
			Flags: []cli.Flag{
				keyFlag,
				&cli.Uint64Flag{Name: "index", Usage: "0-indexed winning ticket", Required: true},
			},
		},
		{
			Action:   s.startPayout,
			Name:     "payout",
			Usage:    "Pay the winner of the resolved round",
			Category: "Instruction",
			Flags:    []cli.Flag{keyFlag},
		},
		{
			Action:   s.startReset,
			Name:     "reset",
			Usage:    "Reopen the round, or roll an empty round over",
			Category: "Instruction",
			Flags: []cli.Flag{
				keyFlag,
				&cli.Uint64Flag{Name: "ticket-price", Usage: "New ticket price, empty rounds only"},
				&cli.UintFlag{Name: "fee-bps", Usage: "New platform fee, empty rounds only"},
				&cli.Int64Flag{Name: "endtime", Usage: "Unix end time of the round"},
			},
		},
		{
			Action:   s.startStatus,
			Name:     "status",
			Usage:    "Print the settlement status",
			Category: "Query",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "user", Usage: "Also report the receipt of this user"},
			},
		},
		{
			Action:   s.startFund,
			Name:     "fund",
			Usage:    "Credit an account of a local deployment",
			Category: "Query",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "address", Required: true},
				&cli.Uint64Flag{Name: "amount", Required: true},
			},
		},
	}

	s.app = app
}
