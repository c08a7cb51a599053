package gold

import (
	"context"
	"sort"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/tables"
)

// IncomeCategory is the category that marks money entering the budget.
const IncomeCategory = "Inflow: Ready to Assign"

// incomeBucket is one day's inflow being consumed by later spending.
type incomeBucket struct {
	date   time.Time
	amount float64
}

// dailyFlow is one day's summed inflow or outflow.
type dailyFlow struct {
	date   time.Time
	amount float64
}

// CreateAgeOfMoneyFact computes, per day with spending, how many days old
// the money funding that day's spending is, by FIFO-matching inflows to
// outflows across on-budget accounts.
func (s *Server) CreateAgeOfMoneyFact(ctx context.Context) error {
	txns, err := tables.Download[silver.TransactionRow](ctx, s.store, silver.TransactionsTable)
	if err != nil {
		return err
	}
	accounts, err := tables.Download[AccountDimRow](ctx, s.store, AccountsDimTable)
	if err != nil {
		return err
	}

	inflow, outflow, err := dailyFlows(txns, accounts)
	if err != nil {
		return err
	}

	rows := computeAgeOfMoney(inflow, outflow)
	_, err = tables.Upload(ctx, s.store, AgeOfMoneyFactTable, rows)
	return err
}

// dailyFlows buckets on-budget transaction amounts by day, split into the
// income category versus everything else. Rows without a category are
// excluded, which keeps transfers out of both series.
func dailyFlows(txns []silver.TransactionRow, accounts []AccountDimRow) (inflow, outflow []dailyFlow, err error) {
	onBudget := make(map[string]bool)
	for _, account := range accounts {
		onBudget[account.AccountID] = account.OnBudget
	}

	inflowByDay := make(map[time.Time]float64)
	outflowByDay := make(map[time.Time]float64)
	for _, txn := range txns {
		if !onBudget[txn.AccountID] || txn.CategoryName == nil {
			continue
		}
		day, err := dates.ParseDay(txn.Date)
		if err != nil {
			return nil, nil, err
		}
		if *txn.CategoryName == IncomeCategory {
			inflowByDay[day] += txn.Amount
		} else {
			outflowByDay[day] += txn.Amount
		}
	}

	return sortFlows(inflowByDay), sortFlows(outflowByDay), nil
}

// computeAgeOfMoney walks the outflow days strictly chronologically, draining
// income buckets in FIFO order. When the last bucket is exhausted the walk
// keeps consuming it, letting age of money go negative; that is deliberate.
func computeAgeOfMoney(inflow, outflow []dailyFlow) []AgeOfMoneyFactRow {
	if len(inflow) == 0 {
		return nil
	}

	buckets := make([]incomeBucket, len(inflow))
	for i, flow := range inflow {
		buckets[i] = incomeBucket{date: flow.date, amount: flow.amount}
	}

	current := &buckets[0]
	next := 1

	rows := make([]AgeOfMoneyFactRow, 0, len(outflow))
	for _, day := range outflow {
		current.amount += day.amount

		if current.amount <= 0 {
			carrying := current.amount
			if next < len(buckets) {
				current = &buckets[next]
				next++
			}
			current.amount += carrying
		}

		age := int32(day.date.Sub(current.date) / (24 * time.Hour))
		rows = append(rows, AgeOfMoneyFactRow{Date: dates.FormatDay(day.date), AgeOfMoney: age})
	}

	return rows
}

func sortFlows(byDay map[time.Time]float64) []dailyFlow {
	flows := make([]dailyFlow, 0, len(byDay))
	for day, amount := range byDay {
		flows = append(flows, dailyFlow{date: day, amount: amount})
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].date.Before(flows[j].date) })
	return flows
}
