package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinica/clinica/internal/platform/db"
	"github.com/clinica/clinica/internal/platform/httperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `a.id, a.account_id, a.patient_id, a.day, a.time_of_day, a.coverage,
	a.status, a.arrival_time, a.detail, a.first_visit, a.visit_id,
	a.temp_first_name, a.temp_last_name, a.updated_at,
	p.first_name, p.last_name, p.national_id, p.phone, p.coverage`

const apptJoin = `LEFT JOIN patients p ON p.id = a.patient_id AND p.active = TRUE`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.AccountID, &a.PatientID, &a.Day, &a.TimeOfDay, &a.Coverage,
		&a.Status, &a.ArrivalTime, &a.Detail, &a.FirstVisit, &a.VisitID,
		&a.TempFirstName, &a.TempLastName, &a.UpdatedAt,
		&a.joinedFirstName, &a.joinedLastName, &a.PatientNationalID, &a.PatientPhone, &a.PatientCoverage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	a.resolveName()
	return &a, nil
}

func collectAppts(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context, accountID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments a `+apptJoin+`
		WHERE a.account_id = $1
		ORDER BY a.day DESC, a.time_of_day`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return collectAppts(rows)
}

func (r *repoPG) ListByDate(ctx context.Context, accountID uuid.UUID, day time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments a `+apptJoin+`
		WHERE a.account_id = $1 AND a.day = $2
		ORDER BY a.time_of_day`, accountID, day)
	if err != nil {
		return nil, fmt.Errorf("list appointments by date: %w", err)
	}
	return collectAppts(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, accountID, patientID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments a `+apptJoin+`
		WHERE a.account_id = $1 AND a.patient_id = $2
		ORDER BY a.day DESC, a.time_of_day`, accountID, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return collectAppts(rows)
}

func (r *repoPG) FindByID(ctx context.Context, accountID, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointments a `+apptJoin+`
		WHERE a.account_id = $1 AND a.id = $2`, accountID, id))
}

// Create guards the optional patient reference: when one is given it
// must be an active patient of the same account.
func (r *repoPG) Create(ctx context.Context, accountID uuid.UUID, a *Appointment) error {
	a.ID = uuid.New()
	a.AccountID = accountID
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, account_id, patient_id, day, time_of_day,
			coverage, status, arrival_time, detail, first_visit, visit_id,
			temp_first_name, temp_last_name)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		WHERE $3::uuid IS NULL OR EXISTS (
			SELECT 1 FROM patients
			WHERE id = $3 AND account_id = $2 AND active = TRUE
		)`,
		a.ID, a.AccountID, a.PatientID, a.Day, a.TimeOfDay,
		a.Coverage, a.Status, a.ArrivalTime, a.Detail, a.FirstVisit, a.VisitID,
		a.TempFirstName, a.TempLastName,
	)
	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient: %w", httperr.ErrNotFound)
	}
	return nil
}

// Update replaces the slot fields; the naming source (patient reference
// and temporary names) stays as created.
func (r *repoPG) Update(ctx context.Context, accountID uuid.UUID, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET
			day=$3, time_of_day=$4, coverage=$5, status=$6, arrival_time=$7,
			detail=$8, first_visit=$9, visit_id=$10, updated_at=NOW()
		WHERE account_id = $1 AND id = $2`,
		accountID, a.ID,
		a.Day, a.TimeOfDay, a.Coverage, a.Status, a.ArrivalTime,
		a.Detail, a.FirstVisit, a.VisitID,
	)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func (r *repoPG) SetStatus(ctx context.Context, accountID, id uuid.UUID, status string, arrivalTime *string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET
			status=$3, arrival_time=COALESCE($4, arrival_time), updated_at=NOW()
		WHERE account_id = $1 AND id = $2`,
		accountID, id, status, arrivalTime)
	if err != nil {
		return fmt.Errorf("set appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointments WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}
