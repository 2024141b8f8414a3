package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"costmanager/internal/core"
)

// PostgresRepository is the alternate store backend, selected with
// DATA_BACKEND=postgres. Same contract as the SQLite repository.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(url string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runPostgresMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if _, err := r.GetUser(ctx, u.ID); err == nil {
		return core.User{}, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return core.User{}, err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, birthday, marital_status) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.FirstName, u.LastName, u.Birthday.UTC(), u.MaritalStatus)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var (
		u        core.User
		birthday time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, birthday, marital_status FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &birthday, &u.MaritalStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.Birthday = core.Date{Time: birthday.UTC()}
	return u, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, birthday, marital_status FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var (
			u        core.User
			birthday time.Time
		)
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &birthday, &u.MaritalStatus); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Birthday = core.Date{Time: birthday.UTC()}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) UserTotal(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(sum), 0) FROM costs WHERE userid = $1`, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum user costs: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) CreateCost(ctx context.Context, e core.CostEntry) (core.CostEntry, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO costs (userid, sum, category, description, date) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		e.UserID, e.Sum.String(), e.Category, e.Description, e.Date.UTC()).Scan(&e.ID)
	if err != nil {
		return core.CostEntry{}, fmt.Errorf("insert cost: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) CostsByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.CategoryGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sum, category, description, date
		 FROM costs
		 WHERE userid = $1 AND date >= $2 AND date < $3
		 ORDER BY category ASC, id ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query month costs: %w", err)
	}
	defer rows.Close()

	var groups []core.CategoryGroup
	for rows.Next() {
		var (
			sum         decimal.Decimal
			category    string
			description string
			date        time.Time
		)
		if err := rows.Scan(&sum, &category, &description, &date); err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}

		item := core.ReportItem{Sum: sum, Description: description, Day: date.UTC().Day()}
		if n := len(groups); n == 0 || groups[n-1].Category != category {
			groups = append(groups, core.CategoryGroup{Category: category})
		}
		groups[len(groups)-1].Items = append(groups[len(groups)-1].Items, item)
	}
	return groups, rows.Err()
}

func (r *PostgresRepository) InsertLog(ctx context.Context, rec core.LogRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("marshal log payload: %w", err)
	}

	var userid sql.NullInt64
	if rec.UserID != nil {
		userid = sql.NullInt64{Int64: *rec.UserID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO logs (id, action, at, userid, payload) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Action, rec.At.UTC(), userid, payload)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (r *PostgresRepository) QueryLogs(ctx context.Context, userID *int64, limit int) ([]core.LogRecord, error) {
	query := `SELECT id, action, at, userid, payload FROM logs`
	args := []any{}
	if userID != nil {
		query += ` WHERE userid = $1 ORDER BY at DESC LIMIT $2`
		args = append(args, *userID, limit)
	} else {
		query += ` ORDER BY at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var records []core.LogRecord
	for rows.Next() {
		var (
			rec     core.LogRecord
			at      time.Time
			userid  sql.NullInt64
			payload []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Action, &at, &userid, &payload); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		rec.At = at.UTC()
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

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)
