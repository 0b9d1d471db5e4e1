package main

import (
	"fmt"

	"github.com/questx-lab/settlement/migration"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}
	s.ctx = xcontext.WithDB(s.ctx, db)

	version := cctx.String("version")
	if version == "" {
		return migration.Migrate(s.ctx)
	}

	migrator, ok := migration.Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	return migrator(s.ctx)
}
