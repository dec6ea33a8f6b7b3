package repository

import (
	"context"
	"testing"
	"time"

	"github.com/epeers/refsync/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteFileUpsertAndPurge(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	repo := NewRemoteFileRepository(pool)

	source := "repo-test-" + uuid.NewString()[:8]
	pid := uuid.New()
	f := models.RemoteFile{
		Source:     source,
		Provider:   "flatfiles",
		HashCode:   `"abc123"`,
		Location:   "flatfiles",
		SourceName: "us_stocks_sip/day_aggs_v1/2024/06/2024-06-03.csv.gz",
		LocalName:  "us_stocks_sip_day_aggs_v1_2024-06-03.csv.gz",
		Size:       1024,
		UpdateDate: time.Now().UTC().Truncate(time.Second),
		ProcessID:  &pid,
	}
	require.NoError(t, repo.UpsertRemoteFile(ctx, f))

	f.Size = 2048
	require.NoError(t, repo.UpsertRemoteFile(ctx, f))

	files, err := repo.ListRemoteFiles(ctx, source, "flatfiles")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "abc123", files[0].HashCode, "etag quotes are stripped")
	assert.True(t, files[0].Matches(f.SourceName, `"abc123"`, 2048))

	_, err = repo.GetRemoteFile(ctx, source, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.DeleteRemoteFilesForSource(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTransactionInsertAndPurge(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	repo := NewTransactionRepository(pool)

	source := "repo-test-" + uuid.NewString()[:8]
	for _, code := range []string{"AAPL", "MSFT"} {
		_, err := repo.InsertTransaction(ctx, models.ApiTransaction{
			Source: source, Category: "Splits", SubCategory: code,
			URI: "v3/reference/splits?ticker=" + code, Response: `{"results":[]}`, StatusCode: 200,
		})
		require.NoError(t, err)
	}

	n, err := repo.CountTransactions(ctx, source, "Splits")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	deleted, err := repo.DeleteTransactionsForSource(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestSplitsAndPrices(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	splitRepo := NewSplitRepository(pool)
	priceRepo := NewPriceRepository(pool)

	code := "T" + uuid.NewString()[:6]
	d := func(s string) time.Time { tm, _ := time.Parse("2006-01-02", s); return tm }

	require.NoError(t, splitRepo.StoreSplits(ctx, []models.Split{
		{Source: "polygon.io", Code: code, SplitDate: d("2023-06-01"), Before: 1, After: 3},
		{Source: "polygon.io", Code: code, SplitDate: d("2023-01-01"), Before: 1, After: 2},
	}))
	splits, err := splitRepo.GetSplits(ctx, "polygon.io", code)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.True(t, splits[0].SplitDate.Equal(d("2023-01-01")))

	require.NoError(t, priceRepo.StoreDailyPrices(ctx, []models.EodPrice{
		{Source: "polygon.io", Code: code, DateEod: d("2023-01-03"), Open: 1, High: 2, Low: 1, Close: 2, Volume: 10},
		{Source: "polygon.io", Code: code, DateEod: d("2023-01-04"), Open: 2, High: 3, Low: 2, Close: 3, Volume: 20},
	}))

	all, err := priceRepo.GetDailyPrices(ctx, "polygon.io", code, d("2023-01-01"), time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bounded, err := priceRepo.GetDailyPrices(ctx, "polygon.io", code, d("2023-01-01"), d("2023-01-03"))
	require.NoError(t, err)
	assert.Len(t, bounded, 1)

	_, _ = pool.Exec(ctx, `DELETE FROM splits WHERE code = $1`, code)
	_, _ = pool.Exec(ctx, `DELETE FROM eod_prices WHERE code = $1`, code)
}
