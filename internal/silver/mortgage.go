package silver

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/money"
	"github.com/zachdean/ynab-reporting-pipeline/internal/ynab"
)

// rateScale converts a stored interest rate (annual rate in
// hundred-thousandths) into a fraction.
const rateScale = 100000.0

// InjectMortgagePayments appends synthetic interest and escrow transactions
// for every account carrying an interest-rate schedule. The ledger does not
// record interest or escrow as line items, so without these rows debt-account
// balances never reconcile against the transaction facts.
//
// Amounts here are still raw milliunits; injection runs before subtransaction
// expansion and unit conversion.
func InjectMortgagePayments(transactions []ynab.Transaction, accounts []ynab.Account) []ynab.Transaction {
	byAccount := make(map[string][]ynab.Transaction)
	for _, txn := range transactions {
		byAccount[txn.AccountID] = append(byAccount[txn.AccountID], txn)
	}

	accountIDs := make([]string, 0, len(byAccount))
	for id := range byAccount {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	for _, accountID := range accountIDs {
		account, ok := findAccount(accounts, accountID)
		if !ok || len(account.DebtInterestRates) == 0 {
			continue
		}
		transactions = append(transactions, amortize(byAccount[accountID], account)...)
	}

	return transactions
}

// amortize walks one account's months in order, accruing interest on the
// running balance and applying scheduled escrow.
func amortize(accountTxns []ynab.Transaction, account ynab.Account) []ynab.Transaction {
	totals := make(map[time.Time]int64)
	for _, txn := range accountTxns {
		day, err := dates.ParseDay(txn.Date)
		if err != nil {
			// malformed dates are rejected later at the normalization boundary
			continue
		}
		totals[dates.FirstOfMonth(day)] += txn.Amount
	}

	months := make([]time.Time, 0, len(totals))
	for month := range totals {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	var synthetic []ynab.Transaction
	var runningTotal int64
	for i, month := range months {
		// no prior balance to accrue interest on in the first observed month
		if i == 0 {
			runningTotal += totals[month]
			continue
		}

		rate := float64(scheduleValue(account.DebtInterestRates, month)) / rateScale
		interest := money.RoundUnit(float64(runningTotal) * (rate / 12.0))
		synthetic = append(synthetic, syntheticTransaction(account, month, interest, "interest"))
		runningTotal += interest

		if len(account.DebtEscrowAmounts) > 0 {
			escrow := -scheduleValue(account.DebtEscrowAmounts, month)
			synthetic = append(synthetic, syntheticTransaction(account, month, escrow, "escrow"))
			runningTotal += escrow
		}

		runningTotal += totals[month]
	}

	return synthetic
}

// scheduleValue returns the scheduled value in effect as of target: the most
// recent entry whose effective date is on or before it. When no entry
// applies the value is zero, not the earliest known entry; this mirrors the
// source system even though falling back to zero for pre-schedule months is
// arguably a bug there.
func scheduleValue(schedule map[string]int64, target time.Time) int64 {
	keys := make([]string, 0, len(schedule))
	for key := range schedule {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	for _, key := range keys {
		effective, err := dates.ParseDay(key)
		if err != nil {
			continue
		}
		if !effective.After(target) {
			return schedule[key]
		}
	}
	return 0
}

func syntheticTransaction(account ynab.Account, month time.Time, amount int64, debtType string) ynab.Transaction {
	payeeID := account.ID
	payeeName := account.Name + " Interest/Escrow Payment"
	return ynab.Transaction{
		ID:                  uuid.NewString(),
		Date:                dates.FormatDay(month),
		Amount:              amount,
		Cleared:             "reconciled",
		Approved:            true,
		AccountID:           account.ID,
		AccountName:         account.Name,
		PayeeID:             &payeeID,
		PayeeName:           &payeeName,
		DebtTransactionType: &debtType,
	}
}

func findAccount(accounts []ynab.Account, id string) (ynab.Account, bool) {
	for _, account := range accounts {
		if account.ID == id {
			return account, true
		}
	}
	return ynab.Account{}, false
}
