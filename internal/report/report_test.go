package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"costmanager/internal/core"
)

// fakeCostSource serves cost entries from memory, applying the same window
// filter and category grouping contract as the real store.
type fakeCostSource struct {
	entries []core.CostEntry
	err     error

	calls     int
	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeCostSource) CostsByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.CategoryGroup, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	f.lastStart, f.lastEnd = start, end

	byCategory := map[string][]core.ReportItem{}
	var order []string
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		if _, seen := byCategory[e.Category]; !seen {
			order = append(order, e.Category)
		}
		byCategory[e.Category] = append(byCategory[e.Category], core.ReportItem{
			Sum:         e.Sum,
			Description: e.Description,
			Day:         e.Date.Day(),
		})
	}

	var groups []core.CategoryGroup
	for _, c := range order {
		groups = append(groups, core.CategoryGroup{Category: c, Items: byCategory[c]})
	}
	return groups, nil
}

func entry(userID int64, sum int64, category, description string, date core.Date) core.CostEntry {
	return core.CostEntry{
		UserID:      userID,
		Sum:         decimal.NewFromInt(sum),
		Category:    category,
		Description: description,
		Date:        date,
	}
}

func seedFebruary() *fakeCostSource {
	return &fakeCostSource{entries: []core.CostEntry{
		entry(1, 200, core.CategoryHousing, "rent", core.NewDate(2025, 2, 1)),
		entry(1, 100, core.CategoryFood, "pizza", core.NewDate(2025, 2, 10)),
		entry(1, 50, core.CategoryHealth, "vitamins", core.NewDate(2025, 2, 11)),
	}}
}

func TestAggregateMonthGroupsSortedByCategory(t *testing.T) {
	svc := NewService(seedFebruary())

	groups, err := svc.AggregateMonth(context.Background(), 1, 2025, 2)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"food", "health", "housing"}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i, c := range want {
		if groups[i].Category != c {
			t.Errorf("group[%d] = %q, want %q", i, groups[i].Category, c)
		}
	}
}

func TestAggregateMonthUsesHalfOpenWindow(t *testing.T) {
	src := seedFebruary()
	svc := NewService(src)

	if _, err := svc.AggregateMonth(context.Background(), 1, 2025, 2); err != nil {
		t.Fatal(err)
	}

	if want := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC); !src.lastStart.Equal(want) {
		t.Errorf("window start = %v, want %v", src.lastStart, want)
	}
	if want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC); !src.lastEnd.Equal(want) {
		t.Errorf("window end = %v, want %v", src.lastEnd, want)
	}
}

func TestAggregateMonthBoundaries(t *testing.T) {
	lastInstant := core.Date{Time: time.Date(2025, 2, 28, 23, 59, 59, 999000000, time.UTC)}
	nextMonth := core.Date{Time: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	src := &fakeCostSource{entries: []core.CostEntry{
		entry(1, 10, core.CategoryFood, "last instant of february", lastInstant),
		entry(1, 20, core.CategoryFood, "first instant of march", nextMonth),
	}}
	svc := NewService(src)

	feb, err := svc.AggregateMonth(context.Background(), 1, 2025, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(feb) != 1 || len(feb[0].Items) != 1 {
		t.Fatalf("february groups = %+v", feb)
	}
	if feb[0].Items[0].Description != "last instant of february" {
		t.Errorf("february picked up the wrong entry: %+v", feb[0].Items[0])
	}
	if feb[0].Items[0].Day != 28 {
		t.Errorf("day = %d, want 28", feb[0].Items[0].Day)
	}

	mar, err := svc.AggregateMonth(context.Background(), 1, 2025, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(mar) != 1 || mar[0].Items[0].Description != "first instant of march" {
		t.Fatalf("march groups = %+v", mar)
	}
}

func TestAggregateMonthNoEntries(t *testing.T) {
	svc := NewService(&fakeCostSource{})

	groups, err := svc.AggregateMonth(context.Background(), 42, 2025, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 0 {
		t.Errorf("expected zero groups, got %+v", groups)
	}
}

func TestAggregateMonthInvalidInput(t *testing.T) {
	svc := NewService(seedFebruary())

	if _, err := svc.AggregateMonth(context.Background(), 1, 2025, 13); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("month 13: err = %v, want ErrInvalidMonth", err)
	}
	if _, err := svc.AggregateMonth(context.Background(), 1, 0, 2); !errors.Is(err, core.ErrInvalidYear) {
		t.Errorf("year 0: err = %v, want ErrInvalidYear", err)
	}
}

func TestAggregateMonthStoreError(t *testing.T) {
	storeErr := errors.New("store unavailable")
	svc := NewService(&fakeCostSource{err: storeErr})

	if _, err := svc.AggregateMonth(context.Background(), 1, 2025, 2); !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want wrapped store error", err)
	}
}

func TestAggregateMonthMemoized(t *testing.T) {
	src := seedFebruary()
	svc := NewService(src)

	first, err := svc.AggregateMonth(context.Background(), 1, 2025, 2)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.AggregateMonth(context.Background(), 1, 2025, 2)
	if err != nil {
		t.Fatal(err)
	}

	if src.calls != 1 {
		t.Errorf("store queried %d times, want 1", src.calls)
	}
	if len(first) != len(second) {
		t.Errorf("cached result diverged: %d vs %d groups", len(first), len(second))
	}
}

func TestInvalidateDropsUserMonths(t *testing.T) {
	src := seedFebruary()
	svc := NewService(src)

	if _, err := svc.AggregateMonth(context.Background(), 1, 2025, 2); err != nil {
		t.Fatal(err)
	}

	src.entries = append(src.entries,
		entry(1, 30, core.CategorySports, "gym", core.NewDate(2025, 2, 20)))
	svc.Invalidate(1)

	groups, err := svc.AggregateMonth(context.Background(), 1, 2025, 2)
	if err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("store queried %d times, want 2 after invalidation", src.calls)
	}

	var found bool
	for _, g := range groups {
		if g.Category == core.CategorySports {
			found = true
		}
	}
	if !found {
		t.Error("new entry missing from report after invalidation")
	}
}

func TestFormatAlwaysEmitsAllCategories(t *testing.T) {
	tests := []struct {
		name   string
		groups []core.CategoryGroup
	}{
		{"no groups", nil},
		{"one group", []core.CategoryGroup{{Category: core.CategoryFood, Items: []core.ReportItem{{Day: 1}}}}},
		{"unknown category only", []core.CategoryGroup{{Category: "pets", Items: []core.ReportItem{{Day: 2}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Format(1, 2025, 2, tt.groups)

			if len(rep.Costs) != 5 {
				t.Fatalf("got %d buckets, want 5", len(rep.Costs))
			}
			seen := map[string]int{}
			for _, b := range rep.Costs {
				seen[b.Category]++
			}
			for _, c := range core.Categories() {
				if seen[c] != 1 {
					t.Errorf("category %q appears %d times, want exactly 1", c, seen[c])
				}
			}
		})
	}
}

func TestFormatNonEmptyBucketsFirst(t *testing.T) {
	groups := []core.CategoryGroup{
		{Category: core.CategoryHealth, Items: []core.ReportItem{{Day: 3}}},
		{Category: core.CategorySports, Items: []core.ReportItem{{Day: 4}}},
	}
	rep := Format(1, 2025, 2, groups)

	sawEmpty := false
	for i, b := range rep.Costs {
		if len(b.Items) == 0 {
			sawEmpty = true
		} else if sawEmpty {
			t.Fatalf("non-empty bucket %q at index %d after an empty bucket", b.Category, i)
		}
	}
}

func TestFormatUnknownCategoryDropped(t *testing.T) {
	groups := []core.CategoryGroup{
		{Category: "pets", Items: []core.ReportItem{{Sum: decimal.NewFromInt(5), Description: "dog food", Day: 2}}},
	}
	rep := Format(1, 2025, 2, groups)

	for _, b := range rep.Costs {
		if b.Category == "pets" {
			t.Fatal("unknown category must not get a bucket")
		}
		if len(b.Items) != 0 {
			t.Errorf("bucket %q unexpectedly has items", b.Category)
		}
	}
}

func TestMonthlyReportEndToEnd(t *testing.T) {
	svc := NewService(seedFebruary())

	rep, err := svc.MonthlyReport(context.Background(), 1, 2025, 2)
	if err != nil {
		t.Fatal(err)
	}

	if rep.UserID != 1 || rep.Year != 2025 || rep.Month != 2 {
		t.Errorf("header = %d/%d/%d", rep.UserID, rep.Year, rep.Month)
	}

	byCategory := map[string]core.CategoryBucket{}
	for _, b := range rep.Costs {
		byCategory[b.Category] = b
	}

	checks := []struct {
		category    string
		sum         int64
		description string
		day         int
	}{
		{core.CategoryHousing, 200, "rent", 1},
		{core.CategoryFood, 100, "pizza", 10},
		{core.CategoryHealth, 50, "vitamins", 11},
	}
	for _, c := range checks {
		b := byCategory[c.category]
		if len(b.Items) != 1 {
			t.Fatalf("%s: %d items, want 1", c.category, len(b.Items))
		}
		item := b.Items[0]
		if !item.Sum.Equal(decimal.NewFromInt(c.sum)) || item.Description != c.description || item.Day != c.day {
			t.Errorf("%s item = %+v", c.category, item)
		}
	}

	// sports and education are empty and must trail the three non-empty buckets
	for i, b := range rep.Costs {
		empty := b.Category == core.CategorySports || b.Category == core.CategoryEducation
		if empty && i < 3 {
			t.Errorf("empty bucket %q at index %d, want after non-empty buckets", b.Category, i)
		}
		if !empty && i >= 3 {
			t.Errorf("non-empty bucket %q at index %d", b.Category, i)
		}
	}
}

func TestMonthlyReportDeterministic(t *testing.T) {
	svc := NewService(seedFebruary())
	ctx := context.Background()

	first, err := svc.MonthlyReport(ctx, 1, 2025, 2)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.MonthlyReport(ctx, 1, 2025, 2)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("reports differ:\n%s\n%s", a, b)
	}
}

func TestMonthlyReportEmptyMonth(t *testing.T) {
	svc := NewService(seedFebruary())

	rep, err := svc.MonthlyReport(context.Background(), 1, 2025, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Costs) != 5 {
		t.Fatalf("got %d buckets, want 5", len(rep.Costs))
	}
	for _, b := range rep.Costs {
		if len(b.Items) != 0 {
			t.Errorf("bucket %q not empty: %+v", b.Category, b.Items)
		}
	}
}
