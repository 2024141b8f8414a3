package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"costmanager/internal/core"
)

// timeLayout is the stored date format: fixed-width nanosecond precision in
// UTC. The width matters: range comparisons and ORDER BY run lexicographically
// on the TEXT column, and variable-width fractions (RFC3339Nano trims trailing
// zeros) would sort "...00.5Z" before "...00Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if _, err := r.GetUser(ctx, u.ID); err == nil {
		return core.User{}, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return core.User{}, err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, birthday, marital_status) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, encodeTime(u.Birthday.Time), u.MaritalStatus)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, birthday, marital_status FROM users WHERE id = ?`, id)

	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, birthday, marital_status FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserTotal sums in Go rather than SQL: sums live in a NUMERIC-affinity
// column, so SQLite's SUM would run in floating point and lose exactness.
func (r *SQLiteRepository) UserTotal(ctx context.Context, userID int64) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sum FROM costs WHERE userid = ?`, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum user costs: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var sum decimal.Decimal
		if err := rows.Scan(&sum); err != nil {
			return decimal.Zero, fmt.Errorf("scan cost sum: %w", err)
		}
		total = total.Add(sum)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("sum user costs: %w", err)
	}
	return total, nil
}

func (r *SQLiteRepository) CreateCost(ctx context.Context, e core.CostEntry) (core.CostEntry, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO costs (userid, sum, category, description, date) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Sum.String(), e.Category, e.Description, encodeTime(e.Date.Time))
	if err != nil {
		return core.CostEntry{}, fmt.Errorf("insert cost: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.CostEntry{}, fmt.Errorf("cost insert id: %w", err)
	}
	e.ID = id
	return e, nil
}

func (r *SQLiteRepository) CostsByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.CategoryGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sum, category, description, date
		 FROM costs
		 WHERE userid = ? AND date >= ? AND date < ?
		 ORDER BY category ASC, id ASC`,
		userID, encodeTime(start), encodeTime(end))
	if err != nil {
		return nil, fmt.Errorf("query month costs: %w", err)
	}
	defer rows.Close()

	return groupCostRows(rows)
}

func (r *SQLiteRepository) InsertLog(ctx context.Context, rec core.LogRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("marshal log payload: %w", err)
	}

	var userid sql.NullInt64
	if rec.UserID != nil {
		userid = sql.NullInt64{Int64: *rec.UserID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO logs (id, action, at, userid, payload) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Action, encodeTime(rec.At), userid, string(payload))
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) QueryLogs(ctx context.Context, userID *int64, limit int) ([]core.LogRecord, error) {
	query := `SELECT id, action, at, userid, payload FROM logs`
	args := []any{}
	if userID != nil {
		query += ` WHERE userid = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	return scanLogRows(rows)
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// scanUser reads one user row; the scan func abstracts over Row and Rows.
func scanUser(scan func(...any) error) (core.User, error) {
	var (
		u        core.User
		birthday string
	)
	if err := scan(&u.ID, &u.FirstName, &u.LastName, &birthday, &u.MaritalStatus); err != nil {
		return core.User{}, err
	}
	t, err := decodeTime(birthday)
	if err != nil {
		return core.User{}, fmt.Errorf("decode birthday: %w", err)
	}
	u.Birthday = core.Date{Time: t}
	return u, nil
}

// groupCostRows folds category-ordered cost rows into CategoryGroups.
// Rows must arrive sorted by category; the fold starts a new group on each
// category change, so group order follows the query's ascending sort.
func groupCostRows(rows *sql.Rows) ([]core.CategoryGroup, error) {
	var groups []core.CategoryGroup
	for rows.Next() {
		var (
			sum         decimal.Decimal
			category    string
			description string
			dateRaw     string
		)
		if err := rows.Scan(&sum, &category, &description, &dateRaw); err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}
		date, err := decodeTime(dateRaw)
		if err != nil {
			return nil, fmt.Errorf("decode cost date: %w", err)
		}

		item := core.ReportItem{Sum: sum, Description: description, Day: date.UTC().Day()}
		if n := len(groups); n == 0 || groups[n-1].Category != category {
			groups = append(groups, core.CategoryGroup{Category: category})
		}
		groups[len(groups)-1].Items = append(groups[len(groups)-1].Items, item)
	}
	return groups, rows.Err()
}

func scanLogRows(rows *sql.Rows) ([]core.LogRecord, error) {
	var records []core.LogRecord
	for rows.Next() {
		var (
			rec     core.LogRecord
			atRaw   string
			userid  sql.NullInt64
			payload []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Action, &atRaw, &userid, &payload); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		at, err := decodeTime(atRaw)
		if err != nil {
			return nil, fmt.Errorf("decode log time: %w", err)
		}
		rec.At = at
		if userid.Valid {
			id := userid.Int64
			rec.UserID = &id
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &rec.Payload); err != nil {
				return nil, fmt.Errorf("decode log payload: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
