package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"ratiowatch/internal/report"
	"ratiowatch/internal/tracker"
	"ratiowatch/pkg/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToReportRecord(t *testing.T) {
	at := time.Date(2024, 11, 24, 10, 5, 0, 0, time.UTC)
	rep := report.Report{
		Symbol:      "BTCUSDT",
		GeneratedAt: at,
		Sections: []report.Section{{
			Family: report.FamilyGlobalAccount,
			Blocks: []report.Block{{Title: "Global Long-Short Ratio", Lines: []string{"Long: 53.21% (+1.11)"}}},
		}},
		Readings: []report.Reading{
			{Series: report.SeriesGlobalLong, Change: tracker.Change{Current: 53.21, Diff: 1.11, Baseline: true}},
		},
	}

	rec := postgres.ToReportRecord(rep, nil, true)
	assert.Equal(t, "BTCUSDT", rec.Symbol)
	assert.Equal(t, at, rec.GeneratedAt)
	assert.Equal(t, "Global Long-Short Ratio\nLong: 53.21% (+1.11)", rec.Text)
	assert.False(t, rec.Empty)
	assert.True(t, rec.Delivered)
	require.Len(t, rec.Readings, 1)
	assert.Equal(t, postgres.ReadingRecord{Series: report.SeriesGlobalLong, Value: 53.21, Diff: 1.11, HasBaseline: true}, rec.Readings[0])

	failed := postgres.ToReportRecord(report.Report{Symbol: "BTCUSDT", GeneratedAt: at}, errors.New("open_interest: boom"), false)
	assert.True(t, failed.Empty)
	assert.Equal(t, "", failed.Text)
	assert.Equal(t, "open_interest: boom", failed.Error)
	assert.Empty(t, failed.Readings)
}

// Set RATIOWATCH_TEST_POSTGRES_DSN to run against a live database, e.g.
// "host=localhost port=5432 user=postgres password=yourpw dbname=ratiowatch sslmode=disable".
func testClient(t *testing.T) *postgres.PostgresClient {
	t.Helper()
	dsn := os.Getenv("RATIOWATCH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RATIOWATCH_TEST_POSTGRES_DSN not set")
	}
	client, err := postgres.NewClient(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.AutoMigrate())
	return client
}

// go test -v --run TestReportCRUD
func TestReportCRUD(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	ctxPing, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	require.True(t, client.IsHealthy(ctxPing))

	symbol := "TEST" + time.Now().Format("150405.000")
	old := &postgres.ReportRecord{
		Symbol:      symbol,
		GeneratedAt: time.Now().Add(-48 * time.Hour).UTC(),
		Text:        "old",
	}
	fresh := &postgres.ReportRecord{
		Symbol:      symbol,
		GeneratedAt: time.Now().UTC(),
		Text:        "Open Interest\n88,638 BTC ( - )",
		Delivered:   true,
		Readings: []postgres.ReadingRecord{
			{Series: report.SeriesOpenInterest, Value: 88637.569},
		},
	}
	require.NoError(t, client.InsertReport(ctx, old))
	require.NoError(t, client.InsertReport(ctx, fresh))

	got, err := client.GetReport(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.Text, got.Text)
	require.Len(t, got.Readings, 1)
	assert.Equal(t, report.SeriesOpenInterest, got.Readings[0].Series)

	latest, err := client.LatestReports(ctx, symbol, 10)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, fresh.ID, latest[0].ID)

	n, err := client.DeleteOldReports(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	_, err = client.GetReport(ctx, old.ID)
	assert.Error(t, err)
}

// go test -v --run ^TestPostgresInvalidDSN$
func TestPostgresInvalidDSN(t *testing.T) {
	if os.Getenv("RATIOWATCH_TEST_POSTGRES_DSN") == "" {
		t.Skip("RATIOWATCH_TEST_POSTGRES_DSN not set")
	}
	invalidDSN := "host=invalid port=5432 user=fail password=fail dbname=fail sslmode=disable connect_timeout=2"

	_, err := postgres.NewClient(invalidDSN)
	assert.Error(t, err)
}
