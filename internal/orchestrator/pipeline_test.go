package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/bronze"
	"github.com/zachdean/ynab-reporting-pipeline/internal/gold"
	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
	"github.com/zachdean/ynab-reporting-pipeline/internal/tables"
	"github.com/zachdean/ynab-reporting-pipeline/internal/validate"
	"github.com/zachdean/ynab-reporting-pipeline/internal/ynab"
)

const (
	stubAccounts = `{"data":{"accounts":[
		{"id":"acc-checking","name":"Checking","type":"checking","on_budget":true,"closed":false,
		 "balance":2500000,"cleared_balance":2500000,"uncleared_balance":0,"deleted":false},
		{"id":"acc-savings","name":"Savings","type":"savings","on_budget":true,"closed":false,
		 "balance":0,"cleared_balance":0,"uncleared_balance":0,"deleted":false},
		{"id":"acc-mortgage","name":"Mortgage","type":"mortgage","on_budget":false,"closed":false,
		 "balance":-2004167,"cleared_balance":-2004167,"uncleared_balance":0,
		 "debt_interest_rates":{"2022-01-01":5000},"debt_escrow_amounts":{},"deleted":false}
	]}}`

	stubTransactions = `{"data":{"transactions":[
		{"id":"t-income","date":"2022-01-01","amount":3000000,"cleared":"cleared","approved":true,
		 "account_id":"acc-checking","account_name":"Checking","payee_id":"p-employer","payee_name":"Employer",
		 "category_id":"cat-inflow","category_name":"Inflow: Ready to Assign"},
		{"id":"t-groceries","date":"2022-01-10","amount":-500000,"cleared":"cleared","approved":true,
		 "account_id":"acc-checking","account_name":"Checking","payee_id":"p-grocer","payee_name":"Grocer",
		 "category_id":"cat-groceries","category_name":"Groceries"},
		{"id":"t-principal-1","date":"2022-01-20","amount":-1000000,"cleared":"cleared","approved":true,
		 "account_id":"acc-mortgage","account_name":"Mortgage"},
		{"id":"t-principal-2","date":"2022-02-05","amount":-1000000,"cleared":"cleared","approved":true,
		 "account_id":"acc-mortgage","account_name":"Mortgage"}
	]}}`

	stubMonthJanuary = `{"data":{"month":{"month":"2022-01-01","categories":[
		{"id":"cat-groceries","category_group_id":"grp-everyday","category_group_name":"Everyday",
		 "name":"Groceries","hidden":false,"budgeted":600000,"activity":-500000,"balance":100000,"deleted":false}
	]}}}`

	stubMonthFebruary = `{"data":{"month":{"month":"2022-02-01","categories":[
		{"id":"cat-groceries","category_group_id":"grp-everyday","category_group_name":"Everyday",
		 "name":"Groceries","hidden":false,"budgeted":600000,"activity":0,"balance":700000,"deleted":false}
	]}}}`
)

func stubLedger(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/budgets/test-budget/accounts":
			w.Write([]byte(stubAccounts))
		case "/budgets/test-budget/transactions":
			w.Write([]byte(stubTransactions))
		case "/budgets/test-budget/months/2022-01-01":
			w.Write([]byte(stubMonthJanuary))
		case "/budgets/test-budget/months/2022-02-01":
			w.Write([]byte(stubMonthFebruary))
		default:
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		}
	}))
}

// TestPipelineEndToEnd drives a full run against a stubbed ledger: a
// checking account with income and spending, a mortgage with an interest
// rate schedule and two principal payments, and two budget months. The run
// must complete with a synthetic interest transaction injected for the
// second mortgage month and both reconciliations passing.
func TestPipelineEndToEnd(t *testing.T) {
	server := stubLedger(t)
	defer server.Close()

	store := storage.NewMemoryStore()
	client := ynab.NewClient(server.URL, "test-budget", "test-token")
	clock := func() time.Time {
		return time.Date(2022, time.February, 14, 2, 42, 0, 0, time.UTC)
	}

	acts := BuildActivities(
		bronze.NewIngestor(client, store),
		silver.NewNormalizer(store),
		gold.NewServer(store),
		validate.NewValidator(store),
		clock)

	opts := Options{
		StageTimeout: 30 * time.Second,
		Retry:        RetryPolicy{BaseInterval: time.Millisecond, MaxAttempts: 3},
		Now:          clock,
	}

	ctx := context.Background()
	run, err := New(NewRunStore(), acts, opts).Execute(ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if run.State != StateCompleted {
		t.Fatalf("run state = %s, want %s (failures: %+v)", run.State, StateCompleted, run.Failures)
	}

	facts, err := tables.Download[gold.TransactionFactRow](ctx, store, gold.TransactionsFactTable)
	if err != nil {
		t.Fatalf("read transaction facts: %v", err)
	}
	// 4 ledger transactions plus the injected interest payment
	if len(facts) != 5 {
		t.Fatalf("Expected 5 transaction facts, got %d", len(facts))
	}
	var interest *gold.TransactionFactRow
	for i, fact := range facts {
		if fact.AccountID == "acc-mortgage" && fact.Date == "2022-02-01" {
			interest = &facts[i]
		}
	}
	if interest == nil {
		t.Fatal("injected interest transaction missing from the fact table")
	}
	// 5% annual on a 1,000,000 milliunit balance: -4167 milliunits
	if interest.Amount != -4.17 {
		t.Errorf("interest amount = %v, want -4.17", interest.Amount)
	}

	aom, err := tables.Download[gold.AgeOfMoneyFactRow](ctx, store, gold.AgeOfMoneyFactTable)
	if err != nil {
		t.Fatalf("read age of money: %v", err)
	}
	// one spending day on the checking account; mortgage activity is
	// off-budget and uncategorized so it contributes nothing
	if len(aom) != 1 {
		t.Fatalf("Expected 1 age-of-money row, got %d: %+v", len(aom), aom)
	}
	if aom[0].Date != "2022-01-10" || aom[0].AgeOfMoney != 9 {
		t.Errorf("age of money = %+v, want 9 days on 2022-01-10", aom[0])
	}

	netWorth, err := tables.Download[gold.NetWorthFactRow](ctx, store, gold.NetWorthFactTable)
	if err != nil {
		t.Fatalf("read net worth: %v", err)
	}
	// 2 months x {asset, liability}
	if len(netWorth) != 4 {
		t.Fatalf("Expected 4 net-worth rows, got %d", len(netWorth))
	}

	scd, err := tables.Download[gold.CategorySCDRow](ctx, store, gold.CategorySCDTable)
	if err != nil {
		t.Fatalf("read category history: %v", err)
	}
	// one snapshot per month, so one open interval each
	if len(scd) != 2 {
		t.Fatalf("Expected 2 history intervals, got %d", len(scd))
	}
	for _, interval := range scd {
		if interval.EndDate != nil {
			t.Errorf("interval %+v should be open", interval)
		}
	}
}
