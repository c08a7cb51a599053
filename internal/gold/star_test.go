package gold

import (
	"context"
	"testing"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/storage"
	"github.com/zachdean/ynab-reporting-pipeline/internal/tables"
)

func strp(s string) *string { return &s }

func TestCreateTransactionsFactProjection(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	rows := []silver.TransactionRow{
		{
			ID:           "t1",
			Date:         "2021-01-05",
			Amount:       -42.5,
			Memo:         strp("dropped from the fact"),
			Cleared:      "cleared",
			AccountID:    "a1",
			AccountName:  "Checking",
			PayeeID:      strp("p1"),
			PayeeName:    strp("Grocer"),
			CategoryID:   strp("c1"),
			CategoryName: strp("Groceries"),
		},
		{ID: "t2", Date: "2021-01-06", Amount: 10, AccountID: "a1", AccountName: "Checking"},
	}
	if _, err := tables.Upload(ctx, store, silver.TransactionsTable, rows); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}

	if err := NewServer(store).CreateTransactionsFact(ctx); err != nil {
		t.Fatalf("CreateTransactionsFact failed: %v", err)
	}

	facts, err := tables.Download[TransactionFactRow](ctx, store, TransactionsFactTable)
	if err != nil {
		t.Fatalf("read facts: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("Expected 2 facts, got %d", len(facts))
	}
	f := facts[0]
	if f.ID != "t1" || f.Date != "2021-01-05" || f.Amount != -42.5 || f.AccountID != "a1" {
		t.Errorf("fact measures = %+v", f)
	}
	if f.PayeeID == nil || *f.PayeeID != "p1" || f.CategoryID == nil || *f.CategoryID != "c1" {
		t.Errorf("fact keys = %+v", f)
	}
	if facts[1].PayeeID != nil || facts[1].CategoryID != nil {
		t.Errorf("nullable keys should survive as nil, got %+v", facts[1])
	}
}

func TestCreateAccountsDimAssetClassification(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	rows := []silver.AccountRow{
		{ID: "a1", Name: "Checking", Type: "checking", OnBudget: true, Balance: 400},
		{ID: "a2", Name: "Card", Type: "creditCard", OnBudget: true, Balance: -120},
		{ID: "a3", Name: "Rewards", Type: "rewardsProgram", Balance: 1},
	}
	if _, err := tables.Upload(ctx, store, silver.AccountsTable, rows); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}

	if err := NewServer(store).CreateAccountsDim(ctx); err != nil {
		t.Fatalf("CreateAccountsDim failed: %v", err)
	}

	dim, err := tables.Download[AccountDimRow](ctx, store, AccountsDimTable)
	if err != nil {
		t.Fatalf("read dim: %v", err)
	}
	if len(dim) != 3 {
		t.Fatalf("Expected 3 accounts, got %d", len(dim))
	}
	if dim[0].AssetType == nil || *dim[0].AssetType != "asset" {
		t.Errorf("checking asset type = %v, want asset", dim[0].AssetType)
	}
	if dim[1].AssetType == nil || *dim[1].AssetType != "liability" {
		t.Errorf("creditCard asset type = %v, want liability", dim[1].AssetType)
	}
	if dim[2].AssetType != nil {
		t.Errorf("unmapped type should classify as nil, got %q", *dim[2].AssetType)
	}
}

func TestCreateCategoryDimUsesLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	now := time.Date(2021, time.January, 15, 8, 0, 0, 0, time.UTC)

	rows := []silver.BudgetMonthRow{
		{ID: "c1", Month: "2021-01-01", SnapshotDate: "2021-01-02", CategoryGroupID: "g1", CategoryGroupName: "Group", Name: "Old Name"},
		{ID: "c1", Month: "2021-01-01", SnapshotDate: "2021-01-14", CategoryGroupID: "g1", CategoryGroupName: "Group", Name: "New Name"},
		{ID: "c2", Month: "2021-01-01", SnapshotDate: "2021-01-14", CategoryGroupID: "g1", CategoryGroupName: "Group", Name: "Other", Hidden: true},
	}
	if _, err := tables.Upload(ctx, store, silver.BudgetMonthsTable("2021-01-01"), rows); err != nil {
		t.Fatalf("seed budget month: %v", err)
	}

	if err := NewServer(store).CreateCategoryDim(ctx, now); err != nil {
		t.Fatalf("CreateCategoryDim failed: %v", err)
	}

	dim, err := tables.Download[CategoryDimRow](ctx, store, CategoryDimTable)
	if err != nil {
		t.Fatalf("read dim: %v", err)
	}
	if len(dim) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(dim))
	}
	if dim[0].CategoryID != "c1" || dim[0].Name != "New Name" {
		t.Errorf("dim[0] = %+v, want c1 from the latest snapshot", dim[0])
	}
	if dim[1].CategoryID != "c2" || !dim[1].Hidden {
		t.Errorf("dim[1] = %+v, want hidden c2", dim[1])
	}
}

func TestCreatePayeeDimDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	rows := []silver.TransactionRow{
		{ID: "t1", Date: "2021-01-01", AccountID: "a1", PayeeID: strp("p1"), PayeeName: strp("Grocer")},
		{ID: "t2", Date: "2021-01-02", AccountID: "a1", PayeeID: strp("p2"), PayeeName: strp("Landlord")},
		{ID: "t3", Date: "2021-01-03", AccountID: "a1", PayeeID: strp("p1"), PayeeName: strp("Grocer")},
		{ID: "t4", Date: "2021-01-04", AccountID: "a1"},
	}
	if _, err := tables.Upload(ctx, store, silver.TransactionsTable, rows); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}

	if err := NewServer(store).CreatePayeeDim(ctx); err != nil {
		t.Fatalf("CreatePayeeDim failed: %v", err)
	}

	dim, err := tables.Download[PayeeDimRow](ctx, store, PayeeDimTable)
	if err != nil {
		t.Fatalf("read dim: %v", err)
	}
	if len(dim) != 3 {
		t.Fatalf("Expected 3 distinct payees, got %d", len(dim))
	}
	if *dim[0].PayeeID != "p1" || *dim[1].PayeeID != "p2" {
		t.Errorf("first-seen order not preserved: %+v", dim)
	}
	if dim[2].PayeeID != nil || dim[2].Name != nil {
		t.Errorf("payee-less row should yield a nil payee entry, got %+v", dim[2])
	}
}
