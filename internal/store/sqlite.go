package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/derssen/controller-bot/internal/domain"
)

// SQLiteRepo implements Repo on an embedded SQLite database. All
// read-modify-write transitions are single SQL statements, so they are
// atomic at the engine level without application locks.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the database at the given path, applies
// PRAGMAs, runs migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Shift ledger ---

// StartShift opens the record for (userID, day). The conflict branch
// only fires for a never-started, never-closed row (a webhook stub), so
// a repeated start or a start after auto-close changes nothing and
// reports false.
func (r *SQLiteRepo) StartShift(ctx context.Context, userID int64, day domain.Day, at time.Time) (bool, error) {
	var started bool
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO shift_records (user_id, business_day, start_time, started, created_at)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT(user_id, business_day) DO UPDATE SET
				start_time = excluded.start_time,
				started    = 1
			WHERE shift_records.start_time IS NULL
			  AND shift_records.end_time IS NULL`,
			userID, string(day), at.UTC().Unix(), at.UTC().Unix(),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		started = n > 0
		return nil
	})
	return started, err
}

// CloseShift finds the user's open shift and stamps end_time, guarded by
// end_time IS NULL so a racing auto-close cannot double-close it.
func (r *SQLiteRepo) CloseShift(ctx context.Context, userID int64, at time.Time) (*domain.ShiftRecord, error) {
	var closed *domain.ShiftRecord
	err := withRetry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(ctx, `
			SELECT `+shiftColumns+`
			FROM shift_records
			WHERE user_id = ? AND start_time IS NOT NULL AND end_time IS NULL
			ORDER BY id DESC
			LIMIT 1`,
			userID,
		)
		rec, err := scanShift(row)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNoActiveShift
		}
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE shift_records
			SET end_time = ?
			WHERE id = ? AND end_time IS NULL`,
			at.UTC().Unix(), rec.ID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// Lost the race to auto-close between SELECT and UPDATE.
			return domain.ErrNoActiveShift
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		end := at.UTC()
		rec.EndTime = &end
		closed = rec
		return nil
	})
	return closed, err
}

// CreditLeads is a single upsert: the increment happens inside SQLite,
// so concurrent credits for the same day never lose updates.
func (r *SQLiteRepo) CreditLeads(ctx context.Context, userID int64, day domain.Day, count int, at time.Time) error {
	return withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO shift_records (user_id, business_day, leads, started, created_at)
			VALUES (?, ?, ?, 0, ?)
			ON CONFLICT(user_id, business_day) DO UPDATE SET
				leads = shift_records.leads + excluded.leads`,
			userID, string(day), count, at.UTC().Unix(),
		)
		return err
	})
}

// MarkReport flags the day's report; creates a stub row when the day has
// no record yet. Repeated calls are no-ops.
func (r *SQLiteRepo) MarkReport(ctx context.Context, userID int64, day domain.Day, at time.Time) error {
	return withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO shift_records (user_id, business_day, report_submitted, started, created_at)
			VALUES (?, ?, 1, 0, ?)
			ON CONFLICT(user_id, business_day) DO UPDATE SET
				report_submitted = 1`,
			userID, string(day), at.UTC().Unix(),
		)
		return err
	})
}

// CloseAllOpenBefore is the auto-close sweep. The end_time IS NULL guard
// makes it idempotent; stubs without a start time are skipped.
func (r *SQLiteRepo) CloseAllOpenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, `
			UPDATE shift_records
			SET end_time = ?
			WHERE end_time IS NULL
			  AND start_time IS NOT NULL
			  AND start_time <= ?`,
			cutoff.UTC().Unix(), cutoff.UTC().Unix(),
		)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

func (r *SQLiteRepo) GetRecord(ctx context.Context, userID int64, day domain.Day) (*domain.ShiftRecord, error) {
	var rec *domain.ShiftRecord
	err := withRetry(ctx, func() error {
		row := r.db.QueryRowContext(ctx, `
			SELECT `+shiftColumns+`
			FROM shift_records
			WHERE user_id = ? AND business_day = ?`,
			userID, string(day),
		)
		var err error
		rec, err = scanShift(row)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRecordNotFound
		}
		return err
	})
	return rec, err
}

func (r *SQLiteRepo) GetOpenShift(ctx context.Context, userID int64) (*domain.ShiftRecord, error) {
	var rec *domain.ShiftRecord
	err := withRetry(ctx, func() error {
		row := r.db.QueryRowContext(ctx, `
			SELECT `+shiftColumns+`
			FROM shift_records
			WHERE user_id = ? AND start_time IS NOT NULL AND end_time IS NULL
			ORDER BY id DESC
			LIMIT 1`,
			userID,
		)
		var err error
		rec, err = scanShift(row)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRecordNotFound
		}
		return err
	})
	return rec, err
}

// ListRecords returns the user's full history, oldest first.
func (r *SQLiteRepo) ListRecords(ctx context.Context, userID int64) ([]domain.ShiftRecord, error) {
	var out []domain.ShiftRecord
	err := withRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT `+shiftColumns+`
			FROM shift_records
			WHERE user_id = ?
			ORDER BY business_day ASC`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			rec, err := scanShift(rows)
			if err != nil {
				return err
			}
			out = append(out, *rec)
		}
		return rows.Err()
	})
	return out, err
}

// ListIncompleteReports returns staff who have not submitted the day's
// report: either no record for the day, or the flag still unset.
func (r *SQLiteRepo) ListIncompleteReports(ctx context.Context, day domain.Day) ([]int64, error) {
	var out []int64
	err := withRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT s.user_id
			FROM staff s
			LEFT JOIN shift_records r
			  ON r.user_id = s.user_id AND r.business_day = ?
			WHERE COALESCE(r.report_submitted, 0) = 0
			ORDER BY s.user_id`,
			string(day),
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			out = append(out, id)
		}
		return rows.Err()
	})
	return out, err
}

// --- Staff roster ---

func (r *SQLiteRepo) UpsertStaff(ctx context.Context, p *domain.StaffProfile) error {
	if p == nil {
		return errors.New("nil staff profile")
	}
	created := p.CreatedAt.UTC().Unix()
	if p.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}
	return withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO staff (user_id, real_name, username, language, rank, lead_username, group_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				real_name     = excluded.real_name,
				username      = excluded.username,
				language      = excluded.language,
				rank          = excluded.rank,
				lead_username = excluded.lead_username,
				group_id      = excluded.group_id`,
			p.UserID, p.RealName, p.Username, p.Language,
			int(p.Rank), p.LeadUsername, p.GroupID, created,
		)
		return err
	})
}

func (r *SQLiteRepo) GetStaff(ctx context.Context, userID int64) (*domain.StaffProfile, error) {
	var p *domain.StaffProfile
	err := withRetry(ctx, func() error {
		row := r.db.QueryRowContext(ctx, `
			SELECT `+staffColumns+`
			FROM staff
			WHERE user_id = ?`,
			userID,
		)
		var err error
		p, err = scanStaff(row)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrStaffNotFound
		}
		return err
	})
	return p, err
}

// DeleteStaffByName removes a staff member by CRM name. The ledger rows
// stay: history is append-only.
func (r *SQLiteRepo) DeleteStaffByName(ctx context.Context, realName string) (bool, error) {
	var deleted bool
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, `
			DELETE FROM staff
			WHERE real_name = ?`,
			realName,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

func (r *SQLiteRepo) ListStaff(ctx context.Context) ([]domain.StaffProfile, error) {
	var out []domain.StaffProfile
	err := withRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT `+staffColumns+`
			FROM staff
			ORDER BY rank, real_name`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			p, err := scanStaff(rows)
			if err != nil {
				return err
			}
			out = append(out, *p)
		}
		return rows.Err()
	})
	return out, err
}

// SetStaffGroup records the chat a user last worked from.
func (r *SQLiteRepo) SetStaffGroup(ctx context.Context, userID, groupID int64) error {
	return withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, `
			UPDATE staff
			SET group_id = ?
			WHERE user_id = ?`,
			groupID, userID,
		)
		return err
	})
}
