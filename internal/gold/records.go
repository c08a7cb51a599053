package gold

// Analytics-ready row types for the gold tier. Dates are YYYY-MM-DD strings;
// month columns hold the first day of the month.

const (
	// TransactionsFactTable holds one row per normalized transaction.
	TransactionsFactTable = "gold/transactions_fact.snappy.parquet"
	// AccountsDimTable holds one row per account with its asset class.
	AccountsDimTable = "gold/accounts_dim.snappy.parquet"
	// CategoryDimTable holds the current category attributes.
	CategoryDimTable = "gold/category_dim.snappy.parquet"
	// PayeeDimTable holds one row per distinct payee.
	PayeeDimTable = "gold/payee_dim.snappy.parquet"
	// NetWorthFactTable holds the monthly net-worth rollup.
	NetWorthFactTable = "gold/net_worth_fact.snappy.parquet"
	// AgeOfMoneyFactTable holds the daily age-of-money series.
	AgeOfMoneyFactTable = "gold/age_of_money_fact.snappy.parquet"
	// CategorySCDTable holds the category history intervals.
	CategorySCDTable = "gold/category_scd.snappy.parquet"
)

// TransactionFactRow is the transaction fact: measures plus foreign keys.
type TransactionFactRow struct {
	ID                  string  `parquet:"id"`
	Date                string  `parquet:"date"`
	Amount              float64 `parquet:"amount"`
	AccountID           string  `parquet:"account_id"`
	PayeeID             *string `parquet:"payee_id,optional"`
	CategoryID          *string `parquet:"category_id,optional"`
	DebtTransactionType *string `parquet:"debt_transaction_type,optional"`
}

// AccountDimRow is the account dimension. AssetType is nil for account
// types outside the asset/liability map.
type AccountDimRow struct {
	AccountID string  `parquet:"account_id"`
	Name      string  `parquet:"name"`
	Type      string  `parquet:"type"`
	AssetType *string `parquet:"asset_type,optional"`
	OnBudget  bool    `parquet:"on_budget"`
	Closed    bool    `parquet:"closed"`
	Balance   float64 `parquet:"balance"`
	Deleted   bool    `parquet:"deleted"`
}

// CategoryDimRow is the category dimension, taken from the latest snapshot
// of the current budget month.
type CategoryDimRow struct {
	CategoryID        string `parquet:"category_id"`
	Name              string `parquet:"name"`
	CategoryGroupID   string `parquet:"category_group_id"`
	CategoryGroupName string `parquet:"category_group_name"`
	Hidden            bool   `parquet:"hidden"`
}

// PayeeDimRow is one distinct payee seen in the transactions.
type PayeeDimRow struct {
	PayeeID *string `parquet:"payee_id,optional"`
	Name    *string `parquet:"name,optional"`
}

// NetWorthFactRow is the net-worth delta and running total for one
// (month, asset class) cell. Exactly one of the split running totals is set.
type NetWorthFactRow struct {
	Date                  string   `parquet:"date"`
	AssetType             string   `parquet:"asset_type"`
	Delta                 float64  `parquet:"delta"`
	RunningTotal          float64  `parquet:"running_total"`
	AssetRunningTotal     *float64 `parquet:"asset_running_total,optional"`
	LiabilityRunningTotal *float64 `parquet:"liability_running_total,optional"`
}

// AgeOfMoneyFactRow is the age of the money spent on one day, in days.
type AgeOfMoneyFactRow struct {
	Date       string `parquet:"date"`
	AgeOfMoney int32  `parquet:"age_of_money"`
}

// CategorySCDRow is one type-2 history interval for a category within a
// month. EndDate is nil for the currently open interval.
type CategorySCDRow struct {
	Month             string  `parquet:"month"`
	CategoryID        string  `parquet:"category_id"`
	CategoryGroupID   string  `parquet:"category_group_id"`
	Name              string  `parquet:"name"`
	CategoryGroupName string  `parquet:"category_group_name"`
	Budgeted          float64 `parquet:"budgeted"`
	StartDate         string  `parquet:"start_date"`
	EndDate           *string `parquet:"end_date,optional"`
}
