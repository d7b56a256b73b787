package repository

import (
	"context"
	"errors"
	"fmt"

	"travel_booking/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FlightRepository is the durable flight-record store, table flight_records:
// id uuid PK, flight_id text, source text, destination text,
// flight_date date, maximum_stops int, partner text NULL,
// seat_structure jsonb NULL, created_at timestamptz, updated_at timestamptz.
type FlightRepository struct {
	db     *pgxpool.Pool
	outbox *OutboxRepository
	sb     sq.StatementBuilderType
}

func NewFlightRepository(db *pgxpool.Pool, outbox *OutboxRepository) *FlightRepository {
	return &FlightRepository{
		db:     db,
		outbox: outbox,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var flightColumns = []string{
	"id",
	"flight_id",
	"source",
	"destination",
	"flight_date",
	"maximum_stops",
	"partner",
	"seat_structure",
	"created_at",
	"updated_at",
}

// Put creates or overwrites the record by id. When event is non-nil the
// outbox row is written in the same transaction, so a failed commit leaves
// neither the record nor the event behind.
func (r *FlightRepository) Put(ctx context.Context, rec *models.FlightRecord, event *models.OutboxMessage) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if rec.ID == "" {
		return fmt.Errorf("record id is empty")
	}

	query := r.sb.
		Insert("flight_records").
		Columns(flightColumns...).
		Values(
			rec.ID,
			rec.FlightID,
			rec.Source,
			rec.Destination,
			rec.FlightDate,
			rec.MaximumStops,
			nullStr(rec.Partner),
			[]byte(rec.SeatStructure),
			rec.CreatedAt,
			rec.UpdatedAt,
		).
		Suffix(`
ON CONFLICT (id)
DO UPDATE SET
	maximum_stops = EXCLUDED.maximum_stops,
	partner = EXCLUDED.partner,
	seat_structure = EXCLUDED.seat_structure,
	updated_at = EXCLUDED.updated_at
`)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build put flight sql: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storageErr("begin put flight tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		return storageErr("put flight", err)
	}

	if event != nil && r.outbox != nil {
		if err := r.outbox.CreateMessage(ctx, tx, event); err != nil {
			return fmt.Errorf("record flight event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit put flight tx", err)
	}
	return nil
}

func (r *FlightRepository) GetByID(ctx context.Context, id string) (*models.FlightRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is empty", models.ErrInvalidInput)
	}

	query := r.sb.
		Select(flightColumns...).
		From("flight_records").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get flight sql: %w", err)
	}

	rec, err := r.scanOne(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get flight", err)
	}
	return rec, nil
}

// FindByFlightID returns every schedule row sharing the flight identifier,
// in unspecified order. An empty result is not an error.
func (r *FlightRepository) FindByFlightID(ctx context.Context, flightID string) ([]*models.FlightRecord, error) {
	if flightID == "" {
		return nil, fmt.Errorf("%w: flight id is empty", models.ErrInvalidInput)
	}

	query := r.sb.
		Select(flightColumns...).
		From("flight_records").
		Where(sq.Eq{"flight_id": flightID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find flights sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, storageErr("find flights", err)
	}
	defer rows.Close()

	var res []*models.FlightRecord
	for rows.Next() {
		rec, err := r.scanOne(rows)
		if err != nil {
			return nil, storageErr("scan flight row", err)
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate flight rows", err)
	}
	return res, nil
}

func (r *FlightRepository) ExistsByFlightID(ctx context.Context, flightID string) (bool, error) {
	if flightID == "" {
		return false, fmt.Errorf("%w: flight id is empty", models.ErrInvalidInput)
	}

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM flight_records WHERE flight_id = $1)`, flightID,
	).Scan(&exists)
	if err != nil {
		return false, storageErr("exists flight", err)
	}
	return exists, nil
}

func (r *FlightRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is empty", models.ErrInvalidInput)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM flight_records WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete flight", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FlightRepository) All(ctx context.Context) ([]*models.FlightRecord, error) {
	query := r.sb.Select(flightColumns...).From("flight_records")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build all flights sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, storageErr("all flights", err)
	}
	defer rows.Close()

	var res []*models.FlightRecord
	for rows.Next() {
		rec, err := r.scanOne(rows)
		if err != nil {
			return nil, storageErr("scan flight row", err)
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate flight rows", err)
	}
	return res, nil
}

func (r *FlightRepository) scanOne(row pgx.Row) (*models.FlightRecord, error) {
	var (
		rec     models.FlightRecord
		partner *string
		seats   []byte
	)
	if err := row.Scan(
		&rec.ID,
		&rec.FlightID,
		&rec.Source,
		&rec.Destination,
		&rec.FlightDate,
		&rec.MaximumStops,
		&partner,
		&seats,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if partner != nil {
		rec.Partner = *partner
	}
	rec.SeatStructure = seats
	return &rec, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
