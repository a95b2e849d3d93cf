package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"custodia/internal/custody/models"
	id "custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
)

// Postgres persists custody records in PostgreSQL via database/sql (lib/pq).
//
// Layout is append-only by construction: handover events and condition
// readings are insert-only rows keyed by (item_id, position). Timestamps are
// stored as unix nanoseconds so the (from, to, when) leg key round-trips
// exactly.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema holds the store's DDL. Applied by deployment tooling; integration
// tests apply it directly.
const Schema = `
CREATE TABLE IF NOT EXISTS custody_records (
	item_id    TEXT PRIMARY KEY,
	vendor_id  TEXT NOT NULL,
	authority  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS handover_events (
	item_id     TEXT NOT NULL REFERENCES custody_records(item_id),
	position    INT  NOT NULL,
	from_id     TEXT NOT NULL,
	to_id       TEXT NOT NULL,
	to_category TEXT NOT NULL,
	ts_nanos    BIGINT NOT NULL,
	PRIMARY KEY (item_id, position)
);

CREATE TABLE IF NOT EXISTS transit_conditions (
	item_id          TEXT NOT NULL,
	position         INT  NOT NULL,
	seq              INT  NOT NULL,
	temperature      DOUBLE PRECISION NOT NULL,
	carrier_category TEXT NOT NULL,
	PRIMARY KEY (item_id, position, seq),
	FOREIGN KEY (item_id, position) REFERENCES handover_events(item_id, position)
);
`

// EnsureSchema applies the store schema. Idempotent.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure custody schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, record *models.CustodyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create record: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO custody_records (item_id, vendor_id, authority)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id) DO NOTHING
	`, record.ItemID().String(), record.Vendor().String(), record.Primary().String())
	if err != nil {
		return fmt.Errorf("insert custody record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrConflict
	}

	if err := insertEvents(ctx, tx, record.ItemID(), 0, record.Handovers()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create record: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, itemID id.ItemID) (*models.CustodyRecord, error) {
	return loadRecord(ctx, s.db, itemID, false)
}

// Execute locks the record row FOR UPDATE, rehydrates the aggregate, runs fn,
// and appends only the rows fn added. A failing fn rolls back with no effect.
func (s *Postgres) Execute(
	ctx context.Context,
	itemID id.ItemID,
	fn func(record *models.CustodyRecord) error,
) (*models.CustodyRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin execute: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	record, err := loadRecord(ctx, tx, itemID, true)
	if err != nil {
		return nil, err
	}
	before := record.Handovers()

	if err := fn(record); err != nil {
		return nil, err
	}
	after := record.Handovers()

	if err := insertEvents(ctx, tx, itemID, len(before), after[len(before):]); err != nil {
		return nil, err
	}
	for pos := range before {
		if added := after[pos].TransitConditions[len(before[pos].TransitConditions):]; len(added) > 0 {
			if err := insertConditions(ctx, tx, itemID, pos, len(before[pos].TransitConditions), added); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit execute: %w", err)
	}
	return record, nil
}

// querier is the subset of sql.DB/sql.Tx the loaders need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadRecord(ctx context.Context, q querier, itemID id.ItemID, forUpdate bool) (*models.CustodyRecord, error) {
	head := `SELECT vendor_id, authority FROM custody_records WHERE item_id = $1`
	if forUpdate {
		head += ` FOR UPDATE`
	}
	var vendorID, authority string
	if err := q.QueryRowContext(ctx, head, itemID.String()).Scan(&vendorID, &authority); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load custody record: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT e.position, e.from_id, e.to_id, e.to_category, e.ts_nanos
		FROM handover_events e
		WHERE e.item_id = $1
		ORDER BY e.position
	`, itemID.String())
	if err != nil {
		return nil, fmt.Errorf("load handover events: %w", err)
	}
	defer rows.Close()

	var events []models.HandoverEvent
	for rows.Next() {
		var position int
		var fromID, toID, toCat string
		var tsNanos int64
		if err := rows.Scan(&position, &fromID, &toID, &toCat, &tsNanos); err != nil {
			return nil, fmt.Errorf("scan handover event: %w", err)
		}
		events = append(events, models.HandoverEvent{
			FromID:     id.PartyID(fromID),
			ToID:       id.PartyID(toID),
			ToCategory: id.Category(toCat),
			Timestamp:  time.Unix(0, tsNanos).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate handover events: %w", err)
	}

	condRows, err := q.QueryContext(ctx, `
		SELECT position, temperature, carrier_category
		FROM transit_conditions
		WHERE item_id = $1
		ORDER BY position, seq
	`, itemID.String())
	if err != nil {
		return nil, fmt.Errorf("load transit conditions: %w", err)
	}
	defer condRows.Close()

	for condRows.Next() {
		var position int
		var temperature float64
		var carrierCat string
		if err := condRows.Scan(&position, &temperature, &carrierCat); err != nil {
			return nil, fmt.Errorf("scan transit condition: %w", err)
		}
		if position < 0 || position >= len(events) {
			return nil, fmt.Errorf("transit condition references unknown handover position %d", position)
		}
		events[position].TransitConditions = append(events[position].TransitConditions, models.TransitConditionEntry{
			Temperature:     temperature,
			CarrierCategory: id.Category(carrierCat),
		})
	}
	if err := condRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transit conditions: %w", err)
	}

	return models.Rehydrate(itemID, id.PartyID(vendorID), id.AuthorityID(authority), events)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEvents(ctx context.Context, e execer, itemID id.ItemID, basePos int, events []models.HandoverEvent) error {
	for i, event := range events {
		pos := basePos + i
		if _, err := e.ExecContext(ctx, `
			INSERT INTO handover_events (item_id, position, from_id, to_id, to_category, ts_nanos)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, itemID.String(), pos, event.FromID.String(), event.ToID.String(),
			event.ToCategory.String(), event.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("insert handover event %d: %w", pos, err)
		}
		if err := insertConditions(ctx, e, itemID, pos, 0, event.TransitConditions); err != nil {
			return err
		}
	}
	return nil
}

func insertConditions(ctx context.Context, e execer, itemID id.ItemID, pos, baseSeq int, conds []models.TransitConditionEntry) error {
	for i, cond := range conds {
		if _, err := e.ExecContext(ctx, `
			INSERT INTO transit_conditions (item_id, position, seq, temperature, carrier_category)
			VALUES ($1, $2, $3, $4, $5)
		`, itemID.String(), pos, baseSeq+i, cond.Temperature, cond.CarrierCategory.String()); err != nil {
			return fmt.Errorf("insert transit condition %d/%d: %w", pos, baseSeq+i, err)
		}
	}
	return nil
}
