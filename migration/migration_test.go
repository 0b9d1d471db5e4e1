package migration

import (
	"testing"

	"github.com/questx-lab/settlement/internal/entity"
	"github.com/questx-lab/settlement/pkg/testutil"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	ctx := testutil.MockContext()

	// Running again on a migrated database changes nothing.
	require.NoError(t, Migrate(ctx))
	require.NoError(t, Migrate(ctx))

	migrator := xcontext.DB(ctx).Migrator()
	require.True(t, migrator.HasTable(&entity.LotteryState{}))
	require.True(t, migrator.HasTable(&entity.ProcessedInstruction{}))
	require.True(t, migrator.HasIndex(&entity.UserTicket{}, "idx_user_tickets_round"))
}
