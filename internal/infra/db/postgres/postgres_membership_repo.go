package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-studio-pos/internal/domain"
	"gym-studio-pos/internal/domain/model"
	"gym-studio-pos/internal/domain/ports/repository"
)

// Ensure membershipRepo implements repository.MembershipRepository
var _ repository.MembershipRepository = (*membershipRepo)(nil)

type membershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *membershipRepo {
	return &membershipRepo{pool: pool}
}

const membershipColumns = `
  id, org_id, location_id, customer_id, product_id, status, amount, unit,
  next_billing_date, current_suspension, scheduled_pause, suspensions,
  cancellation_scheduled_for, cancellation_reason, provider_subscription_id,
  created_at, updated_at`

func (r *membershipRepo) Save(ctx context.Context, tx repository.Tx, m *model.Membership) error {
	const q = `
INSERT INTO memberships (
  id, org_id, location_id, customer_id, product_id, status, amount, unit,
  next_billing_date, current_suspension, scheduled_pause, suspensions,
  cancellation_scheduled_for, cancellation_reason, provider_subscription_id,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
ON CONFLICT (id) DO UPDATE SET
  status=$6, amount=$7, unit=$8, next_billing_date=$9, current_suspension=$10,
  scheduled_pause=$11, suspensions=$12, cancellation_scheduled_for=$13,
  cancellation_reason=$14, provider_subscription_id=$15, updated_at=$17;`

	cs, sp, sus, err := encodeMembershipJSON(m)
	if err != nil {
		return err
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		m.ID, m.OrgID, m.LocationID, m.CustomerID, m.ProductID, m.Status, m.Amount, m.Unit,
		m.NextBillingDate, cs, sp, sus,
		m.CancellationScheduledFor, m.CancellationReason, m.ProviderSubscriptionID,
		m.CreatedAt, m.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

// UpdateGuarded writes the full lifecycle state under a status guard: the row
// only changes while its stored status still matches expected, which closes
// the read-modify-write race between concurrent lifecycle calls.
func (r *membershipRepo) UpdateGuarded(ctx context.Context, tx repository.Tx, m *model.Membership, expected model.MembershipStatus) error {
	const q = `
UPDATE memberships SET
  status=$2, next_billing_date=$3, current_suspension=$4, scheduled_pause=$5,
  suspensions=$6, cancellation_scheduled_for=$7, cancellation_reason=$8,
  provider_subscription_id=$9, updated_at=$10
 WHERE id=$1 AND status=$11;`

	cs, sp, sus, err := encodeMembershipJSON(m)
	if err != nil {
		return err
	}
	tag, err := execSQL(ctx, r.pool, tx, q,
		m.ID, m.Status, m.NextBillingDate, cs, sp, sus,
		m.CancellationScheduledFor, m.CancellationReason, m.ProviderSubscriptionID,
		m.UpdatedAt, expected)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

func (r *membershipRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Membership, error) {
	const q = `SELECT` + membershipColumns + ` FROM memberships WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *membershipRepo) FindByCustomer(ctx context.Context, tx repository.Tx, orgID, customerID string) ([]*model.Membership, error) {
	const q = `
SELECT` + membershipColumns + `
  FROM memberships
 WHERE org_id=$1 AND customer_id=$2
 ORDER BY created_at DESC;`
	return r.queryMany(ctx, tx, q, orgID, customerID)
}

func (r *membershipRepo) ListScheduledPausesDue(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Membership, error) {
	const q = `
SELECT` + membershipColumns + `
  FROM memberships
 WHERE status='active'
   AND scheduled_pause IS NOT NULL
   AND (scheduled_pause->>'StartAt')::timestamptz <= $1
 ORDER BY (scheduled_pause->>'StartAt')::timestamptz ASC
 LIMIT $2;`
	return r.queryMany(ctx, tx, q, now, limit)
}

func (r *membershipRepo) ListPausedResumesDue(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Membership, error) {
	const q = `
SELECT` + membershipColumns + `
  FROM memberships
 WHERE status='paused'
   AND current_suspension IS NOT NULL
   AND (current_suspension->>'Scheduled')::bool
   AND (current_suspension->>'PausedAt')::timestamptz
       + ((current_suspension->>'Days')::int * INTERVAL '1 day') <= $1
 ORDER BY (current_suspension->>'PausedAt')::timestamptz ASC
 LIMIT $2;`
	return r.queryMany(ctx, tx, q, now, limit)
}

func (r *membershipRepo) ListCancellationsDue(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Membership, error) {
	const q = `
SELECT` + membershipColumns + `
  FROM memberships
 WHERE status='pending_cancellation'
   AND cancellation_scheduled_for IS NOT NULL
   AND cancellation_scheduled_for <= $1
 ORDER BY cancellation_scheduled_for ASC
 LIMIT $2;`
	return r.queryMany(ctx, tx, q, now, limit)
}

func (r *membershipRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.MembershipStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM memberships GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	out := make(map[model.MembershipStatus]int)
	for rows.Next() {
		var status model.MembershipStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *membershipRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Membership, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	m, err := scanMembership(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrNotFound
		default:
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return m, nil
}

func (r *membershipRepo) queryMany(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Membership, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func encodeMembershipJSON(m *model.Membership) (cs, sp, sus []byte, err error) {
	if m.CurrentSuspension != nil {
		if cs, err = json.Marshal(m.CurrentSuspension); err != nil {
			return nil, nil, nil, err
		}
	}
	if m.ScheduledPause != nil {
		if sp, err = json.Marshal(m.ScheduledPause); err != nil {
			return nil, nil, nil, err
		}
	}
	if sus, err = json.Marshal(m.Suspensions); err != nil {
		return nil, nil, nil, err
	}
	return cs, sp, sus, nil
}

func scanMembership(row pgx.Row) (*model.Membership, error) {
	var m model.Membership
	var cs, sp, sus []byte
	err := row.Scan(
		&m.ID, &m.OrgID, &m.LocationID, &m.CustomerID, &m.ProductID, &m.Status, &m.Amount, &m.Unit,
		&m.NextBillingDate, &cs, &sp, &sus,
		&m.CancellationScheduledFor, &m.CancellationReason, &m.ProviderSubscriptionID,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(cs) > 0 {
		m.CurrentSuspension = &model.Suspension{}
		if err := json.Unmarshal(cs, m.CurrentSuspension); err != nil {
			return nil, err
		}
	}
	if len(sp) > 0 {
		m.ScheduledPause = &model.ScheduledPause{}
		if err := json.Unmarshal(sp, m.ScheduledPause); err != nil {
			return nil, err
		}
	}
	if len(sus) > 0 {
		if err := json.Unmarshal(sus, &m.Suspensions); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
