package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/khgaming94/Herding-Total/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
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

// applyPragmas configures the SQLite connection for durability and concurrency.
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

// AppendEvent inserts a new ledger row and fills in its id. A second
// insert for the same source message returns ErrDuplicateMessage.
func (r *SQLiteRepo) AppendEvent(ctx context.Context, ev *domain.GatherEvent) error {
	if ev == nil {
		return errors.New("nil event")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO gather_events (
			at_ms, channel_id, message_id, actor_id, ranch_id,
			item, amount, value, subtype
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		toMillis(ev.At), ev.ChannelID, ev.MessageID,
		toNullString(ev.ActorID), toNullInt64(ev.RanchID),
		string(ev.Item), ev.Amount, ev.Value, toNullString(ev.Subtype),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateMessage
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = id
	return nil
}

// HasRecentEquivalent reports whether an event with the same channel,
// item, amount and actor exists at or after `since`. An empty actorID
// matches only unattributed rows.
func (r *SQLiteRepo) HasRecentEquivalent(ctx context.Context, channelID int64, item domain.ItemType, amount int64, actorID string, since time.Time) (bool, error) {
	q := `
		SELECT 1 FROM gather_events
		WHERE channel_id = ? AND item = ? AND amount = ? AND at_ms >= ?`
	args := []any{channelID, string(item), amount, toMillis(since)}
	if actorID == "" {
		q += " AND actor_id IS NULL"
	} else {
		q += " AND actor_id = ?"
		args = append(args, actorID)
	}
	q += " LIMIT 1"

	var one int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Totals sums egg and milk amounts, optionally filtered by ranch and
// start time. Nil filters are no-ops.
func (r *SQLiteRepo) Totals(ctx context.Context, ranchID *int64, since *time.Time) (Totals, error) {
	q := `
		SELECT
			COALESCE(SUM(CASE WHEN item = 'eggs' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN item = 'milk' THEN amount END), 0)
		FROM gather_events
		WHERE 1 = 1`
	var args []any
	if ranchID != nil {
		q += " AND ranch_id = ?"
		args = append(args, *ranchID)
	}
	if since != nil {
		q += " AND at_ms >= ?"
		args = append(args, toMillis(*since))
	}

	var t Totals
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&t.Eggs, &t.Milk); err != nil {
		return Totals{}, err
	}
	return t, nil
}

// ActorRollups returns per-actor aggregates restricted to attributed
// rows, ordered by eggs+milk descending with first-seen order breaking
// ties. Nil filters are no-ops.
func (r *SQLiteRepo) ActorRollups(ctx context.Context, ranchID *int64, since *time.Time, limit int) ([]ActorRollup, error) {
	q := `
		SELECT
			actor_id,
			COALESCE(SUM(CASE WHEN item = 'eggs' THEN amount END), 0)      AS eggs_sum,
			COALESCE(SUM(CASE WHEN item = 'milk' THEN amount END), 0)      AS milk_sum,
			COALESCE(SUM(CASE WHEN item = 'herd_buy' THEN amount END), 0)  AS buy_count,
			COALESCE(SUM(CASE WHEN item = 'herd_sell' THEN amount END), 0) AS sell_count,
			COALESCE(SUM(CASE WHEN item = 'herd_buy' THEN value END), 0)   AS buy_cost,
			COALESCE(SUM(CASE WHEN item = 'herd_sell' THEN value END), 0)  AS sell_revenue,
			MIN(id)                                                        AS first_seen
		FROM gather_events
		WHERE actor_id IS NOT NULL`
	var args []any
	if ranchID != nil {
		q += " AND ranch_id = ?"
		args = append(args, *ranchID)
	}
	if since != nil {
		q += " AND at_ms >= ?"
		args = append(args, toMillis(*since))
	}
	q += `
		GROUP BY actor_id
		ORDER BY (eggs_sum + milk_sum) DESC, first_seen ASC
		LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ActorRollup
	for rows.Next() {
		var (
			ru        ActorRollup
			firstSeen int64
		)
		if err := rows.Scan(
			&ru.ActorID, &ru.Eggs, &ru.Milk,
			&ru.HerdBought, &ru.HerdSold,
			&ru.HerdBuyCost, &ru.HerdSellTotal,
			&firstSeen,
		); err != nil {
			return nil, err
		}
		res = append(res, ru)
	}
	return res, rows.Err()
}

// HerdValueTotal sums the currency value of a single herd item type
// since the given time.
func (r *SQLiteRepo) HerdValueTotal(ctx context.Context, since time.Time, item domain.ItemType) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(value), 0)
		FROM gather_events
		WHERE item = ? AND at_ms >= ?`,
		string(item), toMillis(since),
	).Scan(&total)
	return total, err
}

// DeleteEventsSince bulk-removes rows with timestamp >= since,
// optionally restricted to one ranch, and returns the removed count.
func (r *SQLiteRepo) DeleteEventsSince(ctx context.Context, since time.Time, ranchID *int64) (int64, error) {
	q := "DELETE FROM gather_events WHERE at_ms >= ?"
	args := []any{toMillis(since)}
	if ranchID != nil {
		q += " AND ranch_id = ?"
		args = append(args, *ranchID)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetConfigValue reads one key from the config namespace. The second
// return value reports presence.
func (r *SQLiteRepo) GetConfigValue(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM app_config WHERE key = ?`, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetConfigValue upserts one key in the config namespace.
func (r *SQLiteRepo) SetConfigValue(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// DeleteConfigValue removes one key; deleting an absent key is not an error.
func (r *SQLiteRepo) DeleteConfigValue(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM app_config WHERE key = ?`, key)
	return err
}

// AddSubscriber registers an actor for report notifications.
// Re-subscribing updates the delivery chat.
func (r *SQLiteRepo) AddSubscriber(ctx context.Context, sub domain.Subscriber) error {
	created := sub.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscribers (actor_id, chat_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(actor_id) DO UPDATE SET chat_id = excluded.chat_id`,
		sub.ActorID, sub.ChatID, toMillis(created),
	)
	return err
}

// RemoveSubscriber unregisters an actor; removing an absent actor is
// not an error.
func (r *SQLiteRepo) RemoveSubscriber(ctx context.Context, actorID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE actor_id = ?`, actorID)
	return err
}

// ListSubscribers returns all subscribers in opt-in order.
func (r *SQLiteRepo) ListSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT actor_id, chat_id, created_at
		FROM subscribers
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Subscriber
	for rows.Next() {
		var (
			s  domain.Subscriber
			ms int64
		)
		if err := rows.Scan(&s.ActorID, &s.ChatID, &ms); err != nil {
			return nil, err
		}
		s.CreatedAt = fromMillis(ms)
		res = append(res, s)
	}
	return res, rows.Err()
}
