package migration

import (
	"context"

	"github.com/questx-lab/settlement/internal/entity"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Migrators are run by the migrate command, one version at a time.
var Migrators = map[string]func(context.Context) error{
	"0000": migrate0000,
	"0001": migrate0001,
}

// Migrate runs every version in order. Versions are idempotent.
func Migrate(ctx context.Context) error {
	versions := maps.Keys(Migrators)
	slices.Sort(versions)

	for _, version := range versions {
		xcontext.Logger(ctx).Infof("Migrate database to version %s", version)
		if err := Migrators[version](ctx); err != nil {
			return err
		}
	}

	return nil
}

// migrate0000 will create the database with the latest version.
func migrate0000(ctx context.Context) error {
	return entity.MigrateTable(ctx)
}

// migrate0001 indexes tickets by round, for winner lookups by sequence number.
func migrate0001(ctx context.Context) error {
	migrator := xcontext.DB(ctx).Migrator()
	if migrator.HasIndex(&entity.UserTicket{}, "idx_user_tickets_round") {
		return nil
	}

	return migrator.CreateIndex(&entity.UserTicket{}, "idx_user_tickets_round")
}
