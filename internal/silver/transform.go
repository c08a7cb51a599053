// Package silver is the normalization stage: raw bronze JSON is validated,
// reshaped into flat tabular records and written as columnar tables. The
// mortgage amortization injector runs here, before unit conversion.
package silver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zachdean/ynab-reporting-pipeline/internal/bronze"
	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/money"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
	"github.com/zachdean/ynab-reporting-pipeline/internal/tables"
	"github.com/zachdean/ynab-reporting-pipeline/internal/ynab"
)

// ErrSchema marks malformed or missing-field source data. Schema errors are
// fatal immediately: retrying will not fix a schema mismatch.
var ErrSchema = errors.New("schema violation")

// Normalizer runs the normalization activities over the blob store.
type Normalizer struct {
	store storage.BlobStore
}

// NewNormalizer creates a normalization stage bound to a blob store.
func NewNormalizer(store storage.BlobStore) *Normalizer {
	return &Normalizer{store: store}
}

// TransformTransactions reads the raw transaction and account snapshots,
// injects synthetic mortgage payments, expands subtransactions and writes the
// normalized transactions table.
func (n *Normalizer) TransformTransactions(ctx context.Context) (int, error) {
	var rawTxns ynab.TransactionsResponse
	if err := n.readJSON(ctx, bronze.TransactionsBlob, &rawTxns); err != nil {
		return 0, err
	}

	var rawAccounts ynab.AccountsResponse
	if err := n.readJSON(ctx, bronze.AccountsBlob, &rawAccounts); err != nil {
		return 0, err
	}

	transactions := InjectMortgagePayments(rawTxns.Data.Transactions, rawAccounts.Data.Accounts)

	var rows []TransactionRow
	for _, txn := range transactions {
		expanded, err := expandTransaction(txn)
		if err != nil {
			return 0, err
		}
		rows = append(rows, expanded...)
	}

	return tables.Upload(ctx, n.store, TransactionsTable, rows)
}

// TransformAccounts reads the raw account snapshot and writes the normalized
// accounts table.
func (n *Normalizer) TransformAccounts(ctx context.Context) (int, error) {
	var raw ynab.AccountsResponse
	if err := n.readJSON(ctx, bronze.AccountsBlob, &raw); err != nil {
		return 0, err
	}

	rows := make([]AccountRow, 0, len(raw.Data.Accounts))
	for _, account := range raw.Data.Accounts {
		if account.ID == "" {
			return 0, fmt.Errorf("%w: account with empty id in %s", ErrSchema, bronze.AccountsBlob)
		}
		rows = append(rows, AccountRow{
			ID:               account.ID,
			Name:             account.Name,
			Type:             account.Type,
			OnBudget:         account.OnBudget,
			Closed:           account.Closed,
			Note:             account.Note,
			Balance:          money.FromMilliunits(account.Balance),
			ClearedBalance:   money.FromMilliunits(account.ClearedBalance),
			UnclearedBalance: money.FromMilliunits(account.UnclearedBalance),
			Deleted:          account.Deleted,
		})
	}

	return tables.Upload(ctx, n.store, AccountsTable, rows)
}

// TransformBudgetMonth unions every bronze snapshot of one budget month into
// the normalized budget-month table for that month.
func (n *Normalizer) TransformBudgetMonth(ctx context.Context, month string) (int, error) {
	names, err := n.store.List(ctx, bronze.MonthPrefix(month))
	if err != nil {
		return 0, fmt.Errorf("list month snapshots for %s: %w", month, err)
	}

	var rows []BudgetMonthRow
	for _, name := range names {
		snapshotDate := snapshotDateFromPath(name)

		var raw ynab.MonthResponse
		if err := n.readJSON(ctx, name, &raw); err != nil {
			return 0, err
		}
		if raw.Data.Month.Month == "" {
			return 0, fmt.Errorf("%w: missing month field in %s", ErrSchema, name)
		}

		for _, category := range raw.Data.Month.Categories {
			if category.ID == "" {
				return 0, fmt.Errorf("%w: category with empty id in %s", ErrSchema, name)
			}
			rows = append(rows, BudgetMonthRow{
				ID:                category.ID,
				Month:             raw.Data.Month.Month,
				SnapshotDate:      snapshotDate,
				CategoryGroupID:   category.CategoryGroupID,
				CategoryGroupName: category.CategoryGroupName,
				Name:              category.Name,
				Hidden:            category.Hidden,
				Budgeted:          money.FromMilliunits(category.Budgeted),
				Activity:          money.FromMilliunits(category.Activity),
				Balance:           money.FromMilliunits(category.Balance),
			})
		}
	}

	return tables.Upload(ctx, n.store, BudgetMonthsTable(month), rows)
}

// expandTransaction flattens a transaction into one row per split, or a
// single row when there are no splits. Split rows share the parent's fields
// and take amount, category and payee from the child.
func expandTransaction(txn ynab.Transaction) ([]TransactionRow, error) {
	if txn.ID == "" {
		return nil, fmt.Errorf("%w: transaction with empty id", ErrSchema)
	}
	if _, err := dates.ParseDay(txn.Date); err != nil {
		return nil, fmt.Errorf("%w: transaction %s has invalid date %q", ErrSchema, txn.ID, txn.Date)
	}

	base := TransactionRow{
		ID:                    txn.ID,
		Date:                  txn.Date,
		Amount:                money.FromMilliunits(txn.Amount),
		Memo:                  txn.Memo,
		Cleared:               txn.Cleared,
		Approved:              txn.Approved,
		FlagColor:             txn.FlagColor,
		AccountID:             txn.AccountID,
		AccountName:           txn.AccountName,
		PayeeID:               txn.PayeeID,
		PayeeName:             txn.PayeeName,
		CategoryID:            txn.CategoryID,
		CategoryName:          txn.CategoryName,
		TransferAccountID:     txn.TransferAccountID,
		TransferTransactionID: txn.TransferTransactionID,
		DebtTransactionType:   txn.DebtTransactionType,
	}

	if len(txn.Subtransactions) == 0 {
		return []TransactionRow{base}, nil
	}

	rows := make([]TransactionRow, 0, len(txn.Subtransactions))
	for _, sub := range txn.Subtransactions {
		row := base
		row.Amount = money.FromMilliunits(sub.Amount)
		row.Memo = sub.Memo
		row.PayeeID = sub.PayeeID
		row.PayeeName = sub.PayeeName
		row.CategoryID = sub.CategoryID
		row.CategoryName = sub.CategoryName
		rows = append(rows, row)
	}
	return rows, nil
}

func (n *Normalizer) readJSON(ctx context.Context, name string, v any) error {
	data, err := n.store.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("read blob %q: %w", name, err)
	}

	raw, err := bronze.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompress blob %q: %w", name, err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrSchema, name, err)
	}
	return nil
}

// snapshotDateFromPath recovers the capture date from a bronze month blob
// name, e.g. bronze/month/2023-04-01/2023-04-10.json -> 2023-04-10.
func snapshotDateFromPath(name string) string {
	parts := strings.Split(name, "/")
	return strings.TrimSuffix(parts[len(parts)-1], ".json")
}
