// Package bronze is the extraction stage: raw ledger resources are pulled
// from the API and written unmodified, gzip-compressed, to the bronze tier.
// Raw snapshots are immutable once written; a new snapshot gets a new path
// keyed by its capture date.
package bronze

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/logger"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
	"github.com/zachdean/ynab-reporting-pipeline/internal/ynab"
)

const (
	// TransactionsBlob is the raw transactions snapshot path.
	TransactionsBlob = "bronze/transactions.json"
	// AccountsBlob is the raw accounts snapshot path.
	AccountsBlob = "bronze/accounts.json"
)

// MonthPrefix is the bronze folder holding all snapshots of one budget month.
func MonthPrefix(month string) string {
	return fmt.Sprintf("bronze/month/%s/", month)
}

// MonthBlob is the path of one budget-month snapshot captured on snapshotDate.
func MonthBlob(month, snapshotDate string) string {
	return fmt.Sprintf("bronze/month/%s/%s.json", month, snapshotDate)
}

// Ingestor runs the extraction activities against one ledger budget.
type Ingestor struct {
	client *ynab.Client
	store  storage.BlobStore
}

// NewIngestor creates an extraction stage bound to a ledger client and store.
func NewIngestor(client *ynab.Client, store storage.BlobStore) *Ingestor {
	return &Ingestor{client: client, store: store}
}

// LoadTransactions pulls the raw transactions resource into the bronze tier.
func (in *Ingestor) LoadTransactions(ctx context.Context) (int, error) {
	raw, err := in.client.FetchRaw(ctx, "transactions")
	if err != nil {
		return 0, err
	}
	return in.upload(ctx, TransactionsBlob, raw)
}

// LoadAccounts pulls the raw accounts resource into the bronze tier.
func (in *Ingestor) LoadAccounts(ctx context.Context) (int, error) {
	raw, err := in.client.FetchRaw(ctx, "accounts")
	if err != nil {
		return 0, err
	}
	return in.upload(ctx, AccountsBlob, raw)
}

// LoadCurrentBudgetMonth snapshots the budget month containing now. Each
// invocation date produces its own immutable snapshot blob.
func (in *Ingestor) LoadCurrentBudgetMonth(ctx context.Context, now time.Time) (int, error) {
	return in.loadBudgetMonth(ctx, dates.FirstOfMonth(now), now)
}

// LoadPreviousBudgetMonth snapshots the month before now, capturing late
// edits to the prior month before it is considered closed.
func (in *Ingestor) LoadPreviousBudgetMonth(ctx context.Context, now time.Time) (int, error) {
	return in.loadBudgetMonth(ctx, dates.FirstOfMonth(dates.AddMonths(now, -1)), now)
}

// LoadBudgetMonth snapshots an arbitrary budget month, used when
// backfilling history.
func (in *Ingestor) LoadBudgetMonth(ctx context.Context, month, now time.Time) (int, error) {
	return in.loadBudgetMonth(ctx, dates.FirstOfMonth(month), now)
}

func (in *Ingestor) loadBudgetMonth(ctx context.Context, month, now time.Time) (int, error) {
	monthKey := dates.FormatDay(month)
	raw, err := in.client.FetchRaw(ctx, "months/"+monthKey)
	if err != nil {
		return 0, err
	}
	return in.upload(ctx, MonthBlob(monthKey, dates.FormatDay(now)), raw)
}

// upload gzip-compresses the raw JSON and overwrites the blob.
func (in *Ingestor) upload(ctx context.Context, name string, raw []byte) (int, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return 0, fmt.Errorf("compress blob %q: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("compress blob %q: %w", name, err)
	}

	opts := storage.WriteOptions{ContentType: "application/json", ContentEncoding: "gzip"}
	if err := in.store.Write(ctx, name, buf.Bytes(), opts); err != nil {
		return 0, fmt.Errorf("upload blob %q: %w", name, err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("blob", name).Int("bytes", buf.Len()).Msg("uploaded compressed blob")
	return buf.Len(), nil
}

// Decompress undoes the bronze gzip encoding. Plain JSON passes through, so
// readers work whether or not the storage backend transcodes on download.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress blob: %w", err)
	}
	return raw, nil
}
