package ynab

// Wire types for the YNAB v1 API, https://api.ynab.com/v1. Amounts are
// integer milliunits; dates are YYYY-MM-DD strings. Nullable fields are
// pointers so that downstream normalization can distinguish null from empty.

// AccountsResponse is the body of GET /budgets/{budgetId}/accounts.
type AccountsResponse struct {
	Data struct {
		Accounts []Account `json:"accounts"`
	} `json:"data"`
}

// Account is one ledger account, including the debt schedules used by the
// mortgage amortization injector.
type Account struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	OnBudget         bool    `json:"on_budget"`
	Closed           bool    `json:"closed"`
	Note             *string `json:"note"`
	Balance          int64   `json:"balance"`
	ClearedBalance   int64   `json:"cleared_balance"`
	UnclearedBalance int64   `json:"uncleared_balance"`

	// effective-date string -> annual rate in hundred-thousandths
	DebtInterestRates map[string]int64 `json:"debt_interest_rates"`
	// effective-date string -> monthly escrow amount in milliunits
	DebtEscrowAmounts map[string]int64 `json:"debt_escrow_amounts"`

	Deleted bool `json:"deleted"`
}

// TransactionsResponse is the body of GET /budgets/{budgetId}/transactions.
type TransactionsResponse struct {
	Data struct {
		Transactions []Transaction `json:"transactions"`
	} `json:"data"`
}

// Transaction is one ledger transaction. A transaction with subtransactions
// is a split; normalization expands the splits into independent rows.
type Transaction struct {
	ID                      string           `json:"id"`
	Date                    string           `json:"date"`
	Amount                  int64            `json:"amount"`
	Memo                    *string          `json:"memo"`
	Cleared                 string           `json:"cleared"`
	Approved                bool             `json:"approved"`
	FlagColor               *string          `json:"flag_color"`
	AccountID               string           `json:"account_id"`
	AccountName             string           `json:"account_name"`
	PayeeID                 *string          `json:"payee_id"`
	PayeeName               *string          `json:"payee_name"`
	CategoryID              *string          `json:"category_id"`
	CategoryName            *string          `json:"category_name"`
	TransferAccountID       *string          `json:"transfer_account_id"`
	TransferTransactionID   *string          `json:"transfer_transaction_id"`
	MatchedTransactionID    *string          `json:"matched_transaction_id"`
	ImportID                *string          `json:"import_id"`
	ImportPayeeName         *string          `json:"import_payee_name"`
	ImportPayeeNameOriginal *string          `json:"import_payee_name_original"`
	DebtTransactionType     *string          `json:"debt_transaction_type"`
	Deleted                 bool             `json:"deleted"`
	Subtransactions         []Subtransaction `json:"subtransactions"`
}

// Subtransaction is one split of a parent transaction.
type Subtransaction struct {
	ID           string  `json:"id"`
	Amount       int64   `json:"amount"`
	Memo         *string `json:"memo"`
	PayeeID      *string `json:"payee_id"`
	PayeeName    *string `json:"payee_name"`
	CategoryID   *string `json:"category_id"`
	CategoryName *string `json:"category_name"`
	Deleted      bool    `json:"deleted"`
}

// MonthResponse is the body of GET /budgets/{budgetId}/months/{month}.
type MonthResponse struct {
	Data struct {
		Month MonthDetail `json:"month"`
	} `json:"data"`
}

// MonthDetail is one budget month snapshot.
type MonthDetail struct {
	Month      string          `json:"month"`
	Categories []MonthCategory `json:"categories"`
}

// MonthCategory is one category's budgeted/activity/balance within a month
// snapshot, in milliunits.
type MonthCategory struct {
	ID                string `json:"id"`
	CategoryGroupID   string `json:"category_group_id"`
	CategoryGroupName string `json:"category_group_name"`
	Name              string `json:"name"`
	Hidden            bool   `json:"hidden"`
	Budgeted          int64  `json:"budgeted"`
	Activity          int64  `json:"activity"`
	Balance           int64  `json:"balance"`
	Deleted           bool   `json:"deleted"`
}

// MonthsResponse is the body of GET /budgets/{budgetId}/months, used by the
// backfill tool to enumerate historical months.
type MonthsResponse struct {
	Data struct {
		Months []MonthSummary `json:"months"`
	} `json:"data"`
}

// MonthSummary identifies one existing budget month.
type MonthSummary struct {
	Month string `json:"month"`
}
