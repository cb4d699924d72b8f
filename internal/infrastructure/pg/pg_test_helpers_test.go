package pg_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"rateboard-service/internal/domain"
	"rateboard-service/internal/infrastructure/pg"
)

func withPostgres(t *testing.T) (*pg.DB, func()) {
	t.Helper()
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("set TESTCONTAINERS=1 to run containerized PG tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := postgres.RunContainer(ctx,
		postgres.WithDatabase("rateboard"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pg.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, pg.RunMigrations(ctx, db))

	teardown := func() {
		db.Close()
		_ = container.Terminate(context.Background())
	}
	return db, teardown
}

// seedGroup creates a group with two pound instruments and returns
// (groupID, accountInstrumentID, cashInstrumentID).
func seedGroup(t *testing.T, ctx context.Context, db *pg.DB) (string, string, string) {
	t.Helper()
	groups := pg.NewGroupRepo(db)

	groupID, err := groups.CreateGroup(ctx, domain.Group{
		Name: "Pound", Slug: "gbp", Kind: domain.GroupKindCategory,
	})
	require.NoError(t, err)

	accountID, err := groups.CreateInstrument(ctx, domain.Instrument{
		GroupID: groupID, Name: "Pound account buy", Slug: "pound-account-buy",
		BaseCode: "GBP", QuoteCode: "IRR", Side: domain.TradeSideBuy,
	})
	require.NoError(t, err)

	cashID, err := groups.CreateInstrument(ctx, domain.Instrument{
		GroupID: groupID, Name: "Pound cash sell", Slug: "pound-cash-sell",
		BaseCode: "GBP", QuoteCode: "IRR", Side: domain.TradeSideSell,
	})
	require.NoError(t, err)

	return groupID, accountID, cashID
}
