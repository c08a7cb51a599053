// Package tables reads and writes the silver and gold tiers as snappy
// parquet blobs. Row types declare their columns with `parquet:"..."` struct
// tags; optional columns are pointer fields.
package tables

import (
	"bytes"
	"context"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/zachdean/ynab-reporting-pipeline/internal/logger"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
)

// Upload encodes rows as a snappy parquet file and writes it under name.
// Tables are always fully rewritten; there is no incremental merge.
func Upload[T any](ctx context.Context, store storage.BlobStore, name string, rows []T) (int, error) {
	buf := new(bytes.Buffer)
	if err := parquet.Write(buf, rows, parquet.Compression(&parquet.Snappy)); err != nil {
		return 0, fmt.Errorf("encode parquet table %q: %w", name, err)
	}

	opts := storage.WriteOptions{ContentType: "application/octet-stream"}
	if err := store.Write(ctx, name, buf.Bytes(), opts); err != nil {
		return 0, fmt.Errorf("upload table %q: %w", name, err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("blob", name).Int("bytes", buf.Len()).Int("rows", len(rows)).Msg("uploaded table")
	return buf.Len(), nil
}

// Download reads the parquet blob under name and decodes it into rows.
func Download[T any](ctx context.Context, store storage.BlobStore, name string) ([]T, error) {
	data, err := store.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("download table %q: %w", name, err)
	}

	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decode parquet table %q: %w", name, err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("blob", name).Int("bytes", len(data)).Int("rows", len(rows)).Msg("downloaded table")
	return rows, nil
}
