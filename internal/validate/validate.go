// Package validate reconciles the served tables against the account
// dimension. Failures are collected and reported in full; gold tables that
// were already written stay in place.
package validate

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/zachdean/ynab-reporting-pipeline/internal/gold"
	"github.com/zachdean/ynab-reporting-pipeline/internal/logger"
	"github.com/zachdean/ynab-reporting-pipeline/internal/money"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
	"github.com/zachdean/ynab-reporting-pipeline/internal/tables"
)

// Validator runs the reconciliation activities over the blob store.
type Validator struct {
	store storage.BlobStore
}

// NewValidator creates a validation stage bound to a blob store.
func NewValidator(store storage.BlobStore) *Validator {
	return &Validator{store: store}
}

// ValidateTransactionsFact reconciles per-account fact totals against the
// stored account balances. Every mismatching account is reported, with its
// delta, in a single batched error.
func (v *Validator) ValidateTransactionsFact(ctx context.Context) error {
	facts, err := tables.Download[gold.TransactionFactRow](ctx, v.store, gold.TransactionsFactTable)
	if err != nil {
		return err
	}
	accounts, err := tables.Download[gold.AccountDimRow](ctx, v.store, gold.AccountsDimTable)
	if err != nil {
		return err
	}

	return reconcileAccounts(ctx, facts, accounts)
}

// ValidateNetWorthFact reconciles the net-worth deltas against the sum of
// all current account balances.
func (v *Validator) ValidateNetWorthFact(ctx context.Context) error {
	netWorth, err := tables.Download[gold.NetWorthFactRow](ctx, v.store, gold.NetWorthFactTable)
	if err != nil {
		return err
	}
	accounts, err := tables.Download[gold.AccountDimRow](ctx, v.store, gold.AccountsDimTable)
	if err != nil {
		return err
	}

	return reconcileNetWorth(ctx, netWorth, accounts)
}

func reconcileAccounts(ctx context.Context, facts []gold.TransactionFactRow, accounts []gold.AccountDimRow) error {
	totals := make(map[string]float64)
	for _, fact := range facts {
		totals[fact.AccountID] += fact.Amount
	}

	log := logger.FromContext(ctx)

	var result *multierror.Error
	for _, account := range accounts {
		total, ok := totals[account.AccountID]
		if !ok {
			continue
		}
		// rounding to the fixed tolerance absorbs float accumulation noise
		total = money.RoundTolerance(total)
		if total != account.Balance {
			delta := money.RoundTolerance(total - account.Balance)
			log.Warn().
				Str("account", account.Name).
				Float64("balance", account.Balance).
				Float64("fact_total", total).
				Float64("delta", delta).
				Msg("account failed reconciliation")
			result = multierror.Append(result, fmt.Errorf(
				"account %s has balance %v but a transaction total of %v (delta %v)",
				account.Name, account.Balance, total, delta))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%d account(s) failed validation: %w", result.Len(), err)
	}

	log.Info().Msg("all accounts validated successfully")
	return nil
}

func reconcileNetWorth(ctx context.Context, netWorth []gold.NetWorthFactRow, accounts []gold.AccountDimRow) error {
	var deltaTotal, balanceTotal float64
	for _, row := range netWorth {
		deltaTotal += row.Delta
	}
	for _, account := range accounts {
		balanceTotal += account.Balance
	}

	deltaTotal = money.RoundTolerance(deltaTotal)
	balanceTotal = money.RoundTolerance(balanceTotal)
	if deltaTotal != balanceTotal {
		return fmt.Errorf("net worth delta of %v does not match actual net worth of %v",
			deltaTotal, balanceTotal)
	}

	log := logger.FromContext(ctx)
	log.Info().Msg("net worth validated successfully")
	return nil
}
