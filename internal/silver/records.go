package silver

// Normalized row types for the silver tier. Columns mirror the raw ledger
// fields that reporting consumes; amounts are converted from milliunits to
// 2-decimal currency units at this boundary. Dates are YYYY-MM-DD strings.

const (
	// TransactionsTable is the normalized transactions blob path.
	TransactionsTable = "silver/transactions.snappy.parquet"
	// AccountsTable is the normalized accounts blob path.
	AccountsTable = "silver/accounts.snappy.parquet"
)

// BudgetMonthsTable is the normalized blob path for one budget month.
func BudgetMonthsTable(month string) string {
	return "silver/budget_months/" + month + ".snappy.parquet"
}

// BudgetMonthsPrefix is the folder holding every normalized budget month.
const BudgetMonthsPrefix = "silver/budget_months/"

// TransactionRow is one flat transaction, after subtransaction expansion and
// mortgage injection. Split rows share the parent's id.
type TransactionRow struct {
	ID                    string  `parquet:"id"`
	Date                  string  `parquet:"date"`
	Amount                float64 `parquet:"amount"`
	Memo                  *string `parquet:"memo,optional"`
	Cleared               string  `parquet:"cleared"`
	Approved              bool    `parquet:"approved"`
	FlagColor             *string `parquet:"flag_color,optional"`
	AccountID             string  `parquet:"account_id"`
	AccountName           string  `parquet:"account_name"`
	PayeeID               *string `parquet:"payee_id,optional"`
	PayeeName             *string `parquet:"payee_name,optional"`
	CategoryID            *string `parquet:"category_id,optional"`
	CategoryName          *string `parquet:"category_name,optional"`
	TransferAccountID     *string `parquet:"transfer_account_id,optional"`
	TransferTransactionID *string `parquet:"transfer_transaction_id,optional"`
	DebtTransactionType   *string `parquet:"debt_transaction_type,optional"`
}

// AccountRow is one normalized account.
type AccountRow struct {
	ID               string  `parquet:"id"`
	Name             string  `parquet:"name"`
	Type             string  `parquet:"type"`
	OnBudget         bool    `parquet:"on_budget"`
	Closed           bool    `parquet:"closed"`
	Note             *string `parquet:"note,optional"`
	Balance          float64 `parquet:"balance"`
	ClearedBalance   float64 `parquet:"cleared_balance"`
	UnclearedBalance float64 `parquet:"uncleared_balance"`
	Deleted          bool    `parquet:"deleted"`
}

// BudgetMonthRow is one category's state in one budget-month snapshot.
// Multiple snapshots exist per month as the budget is edited over time.
type BudgetMonthRow struct {
	ID                string  `parquet:"id"`
	Month             string  `parquet:"month"`
	SnapshotDate      string  `parquet:"snapshot_date"`
	CategoryGroupID   string  `parquet:"category_group_id"`
	CategoryGroupName string  `parquet:"category_group_name"`
	Name              string  `parquet:"name"`
	Hidden            bool    `parquet:"hidden"`
	Budgeted          float64 `parquet:"budgeted"`
	Activity          float64 `parquet:"activity"`
	Balance           float64 `parquet:"balance"`
}
