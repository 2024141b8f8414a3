package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"costmanager/internal/core"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// Repository is the record store behind the API: users, their cost entries,
// and the append-only activity log. Implementations exist for SQLite and
// Postgres, selected by configuration.
type Repository interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)

	// UserTotal returns the all-time sum of a user's cost entries.
	UserTotal(ctx context.Context, userID int64) (decimal.Decimal, error)

	CreateCost(ctx context.Context, e core.CostEntry) (core.CostEntry, error)

	// CostsByMonth is the grouping query: entries for one user whose date falls
	// in the half-open [start, end) window, grouped by category with one
	// ReportItem per entry, groups sorted by category name ascending.
	CostsByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.CategoryGroup, error)

	InsertLog(ctx context.Context, rec core.LogRecord) error

	// QueryLogs returns log records newest first, optionally filtered by user.
	QueryLogs(ctx context.Context, userID *int64, limit int) ([]core.LogRecord, error)

	Close() error
}
