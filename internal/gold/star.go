// Package gold is the serving stage: normalized tables are reshaped into the
// dimensional star schema plus the derived analytical tables. Every table is
// fully recomputed and overwritten on each run.
package gold

import (
	"context"
	"sort"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
	"github.com/zachdean/ynab-reporting-pipeline/internal/tables"
)

// assetTypes maps ledger account types onto balance-sheet classes.
var assetTypes = map[string]string{
	"checking":       "asset",
	"savings":        "asset",
	"cash":           "asset",
	"otherAsset":     "asset",
	"creditCard":     "liability",
	"lineOfCredit":   "liability",
	"otherLiability": "liability",
	"mortgage":       "liability",
	"autoLoan":       "liability",
	"studentLoan":    "liability",
	"personalLoan":   "liability",
	"medicalDebt":    "liability",
	"otherDebt":      "liability",
}

// Server runs the serving activities over the blob store.
type Server struct {
	store storage.BlobStore
}

// NewServer creates a serving stage bound to a blob store.
func NewServer(store storage.BlobStore) *Server {
	return &Server{store: store}
}

// CreateTransactionsFact projects the normalized transactions onto the fact
// columns.
func (s *Server) CreateTransactionsFact(ctx context.Context) error {
	rows, err := tables.Download[silver.TransactionRow](ctx, s.store, silver.TransactionsTable)
	if err != nil {
		return err
	}

	facts := make([]TransactionFactRow, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, TransactionFactRow{
			ID:                  row.ID,
			Date:                row.Date,
			Amount:              row.Amount,
			AccountID:           row.AccountID,
			PayeeID:             row.PayeeID,
			CategoryID:          row.CategoryID,
			DebtTransactionType: row.DebtTransactionType,
		})
	}

	_, err = tables.Upload(ctx, s.store, TransactionsFactTable, facts)
	return err
}

// CreateAccountsDim projects the normalized accounts onto the dimension
// columns and classifies each account as asset or liability.
func (s *Server) CreateAccountsDim(ctx context.Context) error {
	rows, err := tables.Download[silver.AccountRow](ctx, s.store, silver.AccountsTable)
	if err != nil {
		return err
	}

	dim := make([]AccountDimRow, 0, len(rows))
	for _, row := range rows {
		var assetType *string
		if class, ok := assetTypes[row.Type]; ok {
			assetType = &class
		}
		dim = append(dim, AccountDimRow{
			AccountID: row.ID,
			Name:      row.Name,
			Type:      row.Type,
			AssetType: assetType,
			OnBudget:  row.OnBudget,
			Closed:    row.Closed,
			Balance:   row.Balance,
			Deleted:   row.Deleted,
		})
	}

	_, err = tables.Upload(ctx, s.store, AccountsDimTable, dim)
	return err
}

// CreateCategoryDim builds the category dimension from the latest snapshot of
// the current budget month. The SCD table would also work, but the current
// month is always available, which keeps the serving fan-out parallel.
func (s *Server) CreateCategoryDim(ctx context.Context, now time.Time) error {
	month := dates.FormatDay(dates.FirstOfMonth(now))
	rows, err := tables.Download[silver.BudgetMonthRow](ctx, s.store, silver.BudgetMonthsTable(month))
	if err != nil {
		return err
	}

	var latest string
	for _, row := range rows {
		if row.SnapshotDate > latest {
			latest = row.SnapshotDate
		}
	}

	seen := make(map[string]bool)
	var dim []CategoryDimRow
	for _, row := range rows {
		if row.SnapshotDate != latest || seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		dim = append(dim, CategoryDimRow{
			CategoryID:        row.ID,
			Name:              row.Name,
			CategoryGroupID:   row.CategoryGroupID,
			CategoryGroupName: row.CategoryGroupName,
			Hidden:            row.Hidden,
		})
	}
	sort.Slice(dim, func(i, j int) bool {
		if dim[i].CategoryID != dim[j].CategoryID {
			return dim[i].CategoryID < dim[j].CategoryID
		}
		return dim[i].Name < dim[j].Name
	})

	_, err = tables.Upload(ctx, s.store, CategoryDimTable, dim)
	return err
}

// CreatePayeeDim deduplicates the payees seen in the normalized
// transactions, preserving first-seen order.
func (s *Server) CreatePayeeDim(ctx context.Context) error {
	rows, err := tables.Download[silver.TransactionRow](ctx, s.store, silver.TransactionsTable)
	if err != nil {
		return err
	}

	type pair struct{ id, name string }
	seen := make(map[pair]bool)
	var dim []PayeeDimRow
	for _, row := range rows {
		p := pair{deref(row.PayeeID), deref(row.PayeeName)}
		if seen[p] {
			continue
		}
		seen[p] = true
		dim = append(dim, PayeeDimRow{PayeeID: row.PayeeID, Name: row.PayeeName})
	}

	_, err = tables.Upload(ctx, s.store, PayeeDimTable, dim)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
