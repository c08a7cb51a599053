package gold

import (
	"context"
	"sort"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/tables"
)

// CreateNetWorthFact rolls the transaction facts up into monthly net-worth
// deltas and running totals per asset class. The table is redundant with the
// facts but makes reporting tools considerably easier to work with.
func (s *Server) CreateNetWorthFact(ctx context.Context) error {
	facts, err := tables.Download[TransactionFactRow](ctx, s.store, TransactionsFactTable)
	if err != nil {
		return err
	}
	accounts, err := tables.Download[AccountDimRow](ctx, s.store, AccountsDimTable)
	if err != nil {
		return err
	}

	rows, err := computeNetWorth(facts, accounts)
	if err != nil {
		return err
	}

	_, err = tables.Upload(ctx, s.store, NetWorthFactTable, rows)
	return err
}

func computeNetWorth(facts []TransactionFactRow, accounts []AccountDimRow) ([]NetWorthFactRow, error) {
	classByAccount := make(map[string]string)
	for _, account := range accounts {
		if account.AssetType != nil {
			classByAccount[account.AccountID] = *account.AssetType
		}
	}

	type cell struct {
		month     time.Time
		assetType string
	}
	deltas := make(map[cell]float64)
	monthSet := make(map[time.Time]bool)
	typeSet := make(map[string]bool)

	for _, fact := range facts {
		class, ok := classByAccount[fact.AccountID]
		if !ok {
			// accounts outside the asset/liability map carry no class
			continue
		}
		day, err := dates.ParseDay(fact.Date)
		if err != nil {
			return nil, err
		}
		month := dates.FirstOfMonth(day)
		deltas[cell{month, class}] += fact.Amount
		monthSet[month] = true
		typeSet[class] = true
	}

	months := make([]time.Time, 0, len(monthSet))
	for month := range monthSet {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	types := make([]string, 0, len(typeSet))
	for class := range typeSet {
		types = append(types, class)
	}
	sort.Strings(types)

	// every (month, class) cell gets a row, zero-filled where no activity,
	// so running totals stay continuous
	running := make(map[string]float64)
	var rows []NetWorthFactRow
	for _, month := range months {
		for _, class := range types {
			delta := deltas[cell{month, class}]
			running[class] += delta

			row := NetWorthFactRow{
				Date:         dates.FormatDay(month),
				AssetType:    class,
				Delta:        delta,
				RunningTotal: running[class],
			}
			total := running[class]
			switch class {
			case "asset":
				row.AssetRunningTotal = &total
			case "liability":
				row.LiabilityRunningTotal = &total
			}
			rows = append(rows, row)
		}
	}

	return rows, nil
}
