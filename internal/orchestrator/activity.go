package orchestrator

import (
	"context"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/bronze"
	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/gold"
	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/validate"
)

// Stage identifies one of the sequential pipeline stages.
type Stage string

const (
	// StageExtracting pulls raw ledger resources into the bronze tier.
	StageExtracting Stage = "extracting"
	// StageNormalizing rewrites bronze blobs as normalized silver tables.
	StageNormalizing Stage = "normalizing"
	// StageServing builds the gold star schema and derived tables.
	StageServing Stage = "serving"
	// StageValidating reconciles the gold tables against account balances.
	StageValidating Stage = "validating"
)

// stageOrder is the barrier sequence: a stage starts only after every
// activity of the previous stage has succeeded.
var stageOrder = []Stage{StageExtracting, StageNormalizing, StageServing, StageValidating}

// previousMonthCutoffDay is the last day of the month on which the previous
// budget month is still being amended and therefore re-extracted.
const previousMonthCutoffDay = 15

// Activity is one unit of pipeline work. Activities in the same stage run
// concurrently unless ordered by Deps, which may only name activities of the
// same stage.
type Activity struct {
	Name  string
	Stage Stage
	// Deps lists same-stage activities that must succeed first.
	Deps []string
	// PreviousMonth marks activities skipped after the monthly cutoff day.
	PreviousMonth bool
	Run           func(ctx context.Context) error
}

// BuildActivities wires the stage implementations into the activity set the
// orchestrator schedules. clock supplies the run's notion of now, which
// drives month selection and the previous-month cutoff.
func BuildActivities(ing *bronze.Ingestor, norm *silver.Normalizer, srv *gold.Server, val *validate.Validator, clock func() time.Time) []Activity {
	currentMonth := func() string {
		return dates.FormatDay(dates.FirstOfMonth(clock()))
	}
	previousMonth := func() string {
		return dates.FormatDay(dates.FirstOfMonth(dates.AddMonths(clock(), -1)))
	}
	discard := func(f func(ctx context.Context) (int, error)) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			_, err := f(ctx)
			return err
		}
	}

	return []Activity{
		{Name: "load_transactions", Stage: StageExtracting, Run: discard(ing.LoadTransactions)},
		{Name: "load_accounts", Stage: StageExtracting, Run: discard(ing.LoadAccounts)},
		{Name: "load_current_budget_month", Stage: StageExtracting, Run: func(ctx context.Context) error {
			_, err := ing.LoadCurrentBudgetMonth(ctx, clock())
			return err
		}},
		{Name: "load_previous_budget_month", Stage: StageExtracting, PreviousMonth: true, Run: func(ctx context.Context) error {
			_, err := ing.LoadPreviousBudgetMonth(ctx, clock())
			return err
		}},

		{Name: "transform_transactions", Stage: StageNormalizing, Run: discard(norm.TransformTransactions)},
		{Name: "transform_accounts", Stage: StageNormalizing, Run: discard(norm.TransformAccounts)},
		{Name: "transform_current_budget_month", Stage: StageNormalizing, Run: func(ctx context.Context) error {
			_, err := norm.TransformBudgetMonth(ctx, currentMonth())
			return err
		}},
		{Name: "transform_previous_budget_month", Stage: StageNormalizing, PreviousMonth: true, Run: func(ctx context.Context) error {
			_, err := norm.TransformBudgetMonth(ctx, previousMonth())
			return err
		}},

		{Name: "transactions_fact", Stage: StageServing, Run: srv.CreateTransactionsFact},
		{Name: "accounts_dim", Stage: StageServing, Run: srv.CreateAccountsDim},
		{Name: "category_dim", Stage: StageServing, Run: func(ctx context.Context) error {
			return srv.CreateCategoryDim(ctx, clock())
		}},
		{Name: "payee_dim", Stage: StageServing, Run: srv.CreatePayeeDim},
		{Name: "category_scd", Stage: StageServing, Run: srv.CreateCategorySCD},
		{Name: "net_worth_fact", Stage: StageServing, Deps: []string{"transactions_fact", "accounts_dim"}, Run: srv.CreateNetWorthFact},
		{Name: "age_of_money_fact", Stage: StageServing, Deps: []string{"accounts_dim"}, Run: srv.CreateAgeOfMoneyFact},

		{Name: "validate_transactions_fact", Stage: StageValidating, Run: val.ValidateTransactionsFact},
		{Name: "validate_net_worth_fact", Stage: StageValidating, Run: val.ValidateNetWorthFact},
	}
}
