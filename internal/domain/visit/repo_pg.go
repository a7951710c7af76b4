package visit

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

const visitCols = `v.id, v.account_id, v.patient_id, v.visit_date, v.visit_time,
	v.reason, v.report, v.diagnosis, v.treatment, v.studies, v.attachment,
	v.created_at, v.updated_at, p.first_name, p.last_name`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(
		&v.ID, &v.AccountID, &v.PatientID, &v.VisitDate, &v.VisitTime,
		&v.Reason, &v.Report, &v.Diagnosis, &v.Treatment, &v.Studies, &v.Attachment,
		&v.CreatedAt, &v.UpdatedAt, &v.PatientFirstName, &v.PatientLastName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan visit: %w", err)
	}
	return &v, nil
}

func collectVisits(rows pgx.Rows) ([]*Visit, error) {
	defer rows.Close()
	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context, accountID uuid.UUID) ([]*Visit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+visitCols+` FROM visits v
		JOIN patients p ON p.id = v.patient_id AND p.active = TRUE
		WHERE v.account_id = $1
		ORDER BY v.visit_date DESC, v.visit_time DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return collectVisits(rows)
}

func (r *repoPG) ListByDate(ctx context.Context, accountID uuid.UUID, date time.Time) ([]*Visit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+visitCols+` FROM visits v
		JOIN patients p ON p.id = v.patient_id AND p.active = TRUE
		WHERE v.account_id = $1 AND v.visit_date = $2
		ORDER BY v.visit_time`, accountID, date)
	if err != nil {
		return nil, fmt.Errorf("list visits by date: %w", err)
	}
	return collectVisits(rows)
}

// ListByPatient keeps serving history after the patient is soft
// deleted, so the join does not filter on active.
func (r *repoPG) ListByPatient(ctx context.Context, accountID, patientID uuid.UUID) ([]*Visit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+visitCols+` FROM visits v
		JOIN patients p ON p.id = v.patient_id
		WHERE v.account_id = $1 AND v.patient_id = $2
		ORDER BY v.visit_date DESC, v.visit_time DESC`, accountID, patientID)
	if err != nil {
		return nil, fmt.Errorf("list visits by patient: %w", err)
	}
	return collectVisits(rows)
}

func (r *repoPG) FindByID(ctx context.Context, accountID, id uuid.UUID) (*Visit, error) {
	return scanVisit(r.conn(ctx).QueryRow(ctx, `
		SELECT `+visitCols+` FROM visits v
		JOIN patients p ON p.id = v.patient_id AND p.active = TRUE
		WHERE v.account_id = $1 AND v.id = $2`, accountID, id))
}

// Create only inserts when the referenced patient is an active patient
// of the same account, so a visit can never cross tenants.
func (r *repoPG) Create(ctx context.Context, accountID uuid.UUID, v *Visit) error {
	v.ID = uuid.New()
	v.AccountID = accountID
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visits (id, account_id, patient_id, visit_date, visit_time,
			reason, report, diagnosis, treatment, studies, attachment)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		WHERE EXISTS (
			SELECT 1 FROM patients
			WHERE id = $3 AND account_id = $2 AND active = TRUE
		)`,
		v.ID, v.AccountID, v.PatientID, v.VisitDate, v.VisitTime,
		v.Reason, v.Report, v.Diagnosis, v.Treatment, v.Studies, v.Attachment,
	)
	if err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient: %w", httperr.ErrNotFound)
	}
	return nil
}

// Update touches the clinical fields only; the visit keeps its patient
// and its date.
func (r *repoPG) Update(ctx context.Context, accountID uuid.UUID, v *Visit) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE visits SET
			reason=$3, report=$4, diagnosis=$5, treatment=$6, studies=$7,
			attachment=$8, updated_at=NOW()
		WHERE account_id = $1 AND id = $2`,
		accountID, v.ID,
		v.Reason, v.Report, v.Diagnosis, v.Treatment, v.Studies, v.Attachment,
	)
	if err != nil {
		return fmt.Errorf("update visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM visits WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return fmt.Errorf("delete visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}
