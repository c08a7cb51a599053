package gold

import (
	"context"
	"sort"

	"github.com/zachdean/ynab-reporting-pipeline/internal/dates"
	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/tables"
)

// CreateCategorySCD unions every normalized budget month and rebuilds the
// type-2 category history table.
func (s *Server) CreateCategorySCD(ctx context.Context) error {
	names, err := s.store.List(ctx, silver.BudgetMonthsPrefix)
	if err != nil {
		return err
	}

	var snapshots []silver.BudgetMonthRow
	for _, name := range names {
		rows, err := tables.Download[silver.BudgetMonthRow](ctx, s.store, name)
		if err != nil {
			return err
		}
		snapshots = append(snapshots, rows...)
	}

	scd, err := BuildCategorySCD(snapshots)
	if err != nil {
		return err
	}

	_, err = tables.Upload(ctx, s.store, CategorySCDTable, scd)
	return err
}

// BuildCategorySCD collapses daily snapshots into slowly-changing-dimension
// intervals. Rows are grouped by the tracked attribute columns within each
// (month, category) partition; each distinct attribute run becomes one
// interval starting at its first snapshot date. Intervals are contiguous,
// non-overlapping and gapless, and the final interval per partition is left
// open (nil end date).
func BuildCategorySCD(snapshots []silver.BudgetMonthRow) ([]CategorySCDRow, error) {
	type attrKey struct {
		month, id, groupID, name, groupName string
		budgeted                            float64
	}

	starts := make(map[attrKey]string)
	for _, row := range snapshots {
		k := attrKey{row.Month, row.ID, row.CategoryGroupID, row.Name, row.CategoryGroupName, row.Budgeted}
		if cur, ok := starts[k]; !ok || row.SnapshotDate < cur {
			starts[k] = row.SnapshotDate
		}
	}

	intervals := make([]CategorySCDRow, 0, len(starts))
	for k, start := range starts {
		intervals = append(intervals, CategorySCDRow{
			Month:             k.month,
			CategoryID:        k.id,
			CategoryGroupID:   k.groupID,
			Name:              k.name,
			CategoryGroupName: k.groupName,
			Budgeted:          k.budgeted,
			StartDate:         start,
		})
	}

	sort.Slice(intervals, func(i, j int) bool {
		a, b := intervals[i], intervals[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		return a.Name < b.Name
	})

	// close every interval at the day before its successor's start; the last
	// interval in each partition stays open
	for i := range intervals {
		if i+1 >= len(intervals) {
			break
		}
		next := intervals[i+1]
		if next.Month != intervals[i].Month || next.CategoryID != intervals[i].CategoryID {
			continue
		}
		start, err := dates.ParseDay(next.StartDate)
		if err != nil {
			return nil, err
		}
		end := dates.FormatDay(start.AddDate(0, 0, -1))
		intervals[i].EndDate = &end
	}

	return intervals, nil
}
