// Package report implements the monthly report engine: aggregation of a
// user's cost entries over one calendar month and formatting into the
// fixed-category report structure.
package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"costmanager/internal/cache"
	"costmanager/internal/core"
)

const (
	cacheSize = 512
	cacheTTL  = 5 * time.Minute
)

// CostSource is the slice of the store the aggregator needs: the grouping
// query over a half-open date window.
type CostSource interface {
	CostsByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.CategoryGroup, error)
}

// Service aggregates and formats monthly reports. The memoization cache is
// per-process: with a shared backend and multiple API instances, a cost added
// through another instance shows up in cached reports only once the entry
// expires (cacheTTL).
type Service struct {
	costs  CostSource
	recent *cache.LRU[[]core.CategoryGroup]
}

func NewService(costs CostSource) *Service {
	return &Service{
		costs:  costs,
		recent: cache.New[[]core.CategoryGroup](cacheSize, cacheTTL),
	}
}

// AggregateMonth fetches and groups one user's cost entries for the given
// calendar month. Groups come back sorted by category name ascending; a user
// with no matching entries yields zero groups, not an error. Categories
// outside the fixed set pass through untouched.
func (s *Service) AggregateMonth(ctx context.Context, userID int64, year, month int) ([]core.CategoryGroup, error) {
	start, end, err := core.MonthWindow(year, month)
	if err != nil {
		return nil, err
	}

	key := cacheKey(userID, year, month)
	if groups, ok := s.recent.Get(key); ok {
		return groups, nil
	}

	groups, err := s.costs.CostsByMonth(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate month (user=%d, year=%d, month=%d): %w", userID, year, month, err)
	}

	// The store contract already orders by category; re-sorting keeps the
	// intermediate deterministic even for sources that don't.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Category < groups[j].Category
	})

	s.recent.Set(key, groups)
	return groups, nil
}

// Invalidate drops every cached month for one user. Called when the user
// records a new cost so subsequent reports see it.
func (s *Service) Invalidate(userID int64) {
	prefix := strconv.FormatInt(userID, 10) + ":"
	s.recent.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func cacheKey(userID int64, year, month int) string {
	return strconv.FormatInt(userID, 10) + ":" + strconv.Itoa(year) + ":" + strconv.Itoa(month)
}

// MonthlyReport aggregates and formats in one step.
func (s *Service) MonthlyReport(ctx context.Context, userID int64, year, month int) (core.MonthlyReport, error) {
	groups, err := s.AggregateMonth(ctx, userID, year, month)
	if err != nil {
		return core.MonthlyReport{}, err
	}
	return Format(userID, year, month, groups), nil
}

// Format maps aggregated groups onto the fixed-category template. The output
// always enumerates exactly the fixed categories, each exactly once; buckets
// with items precede empty buckets, order otherwise preserved (stable).
// Groups whose category is not in the fixed set have no bucket to land in and
// are dropped.
func Format(userID int64, year, month int, groups []core.CategoryGroup) core.MonthlyReport {
	categories := core.Categories()
	buckets := make([]core.CategoryBucket, len(categories))
	for i, c := range categories {
		buckets[i] = core.CategoryBucket{Category: c, Items: []core.ReportItem{}}
	}

	for _, g := range groups {
		for i := range buckets {
			if buckets[i].Category == g.Category {
				buckets[i].Items = g.Items
				break
			}
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return len(buckets[i].Items) > 0 && len(buckets[j].Items) == 0
	})

	return core.MonthlyReport{
		UserID: userID,
		Year:   year,
		Month:  month,
		Costs:  buckets,
	}
}
