package patient

import (
	"context"
	"errors"
	"fmt"

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

const patientCols = `id, account_id, first_name, last_name, national_id, birth_date, sex,
	phone, phone_alt, email, coverage, plan, member_number, city, address, occupation,
	preexisting_conditions, allergies, notes, blood_pressure, weight_min, weight_max,
	bmi, height, target_weight, medication, exercise, active, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.AccountID, &p.FirstName, &p.LastName, &p.NationalID, &p.BirthDate, &p.Sex,
		&p.Phone, &p.PhoneAlt, &p.Email, &p.Coverage, &p.Plan, &p.MemberNum, &p.City, &p.Address, &p.Occupation,
		&p.PreexistingConditions, &p.Allergies, &p.Notes, &p.BloodPressure, &p.WeightMin, &p.WeightMax,
		&p.BMI, &p.Height, &p.TargetWeight, &p.Medication, &p.Exercise, &p.Active, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	defer rows.Close()
	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *repoPG) ListActive(ctx context.Context, accountID uuid.UUID) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patients
		WHERE account_id = $1 AND active = TRUE
		ORDER BY last_name, first_name`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return collectPatients(rows)
}

func (r *repoPG) Search(ctx context.Context, accountID uuid.UUID, term string) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patients
		WHERE account_id = $1 AND active = TRUE
		  AND (first_name ILIKE '%' || $2 || '%'
		       OR last_name ILIKE '%' || $2 || '%'
		       OR national_id LIKE '%' || $2 || '%')
		ORDER BY last_name, first_name`, accountID, term)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return collectPatients(rows)
}

func (r *repoPG) FindByID(ctx context.Context, accountID, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `
		SELECT `+patientCols+` FROM patients
		WHERE account_id = $1 AND id = $2 AND active = TRUE`, accountID, id))
}

func (r *repoPG) FindByNationalID(ctx context.Context, accountID uuid.UUID, nid string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `
		SELECT `+patientCols+` FROM patients
		WHERE account_id = $1 AND national_id = $2 AND active = TRUE`, accountID, nid))
}

func (r *repoPG) Create(ctx context.Context, accountID uuid.UUID, p *Patient) error {
	p.ID = uuid.New()
	p.AccountID = accountID
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (
			id, account_id, first_name, last_name, national_id, birth_date, sex,
			phone, phone_alt, email, coverage, plan, member_number, city, address, occupation,
			preexisting_conditions, allergies, notes, blood_pressure, weight_min, weight_max,
			bmi, height, target_weight, medication, exercise
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
			$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27
		)
		RETURNING active, created_at`,
		p.ID, p.AccountID, p.FirstName, p.LastName, p.NationalID, p.BirthDate, p.Sex,
		p.Phone, p.PhoneAlt, p.Email, p.Coverage, p.Plan, p.MemberNum, p.City, p.Address, p.Occupation,
		p.PreexistingConditions, p.Allergies, p.Notes, p.BloodPressure, p.WeightMin, p.WeightMax,
		p.BMI, p.Height, p.TargetWeight, p.Medication, p.Exercise,
	).Scan(&p.Active, &p.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("national id already registered: %w", httperr.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (r *repoPG) Update(ctx context.Context, accountID uuid.UUID, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			first_name=$3, last_name=$4, national_id=$5, birth_date=$6, sex=$7,
			phone=$8, phone_alt=$9, email=$10, coverage=$11, plan=$12, member_number=$13,
			city=$14, address=$15, occupation=$16, preexisting_conditions=$17,
			allergies=$18, notes=$19, blood_pressure=$20, weight_min=$21, weight_max=$22,
			bmi=$23, height=$24, target_weight=$25, medication=$26, exercise=$27
		WHERE account_id = $1 AND id = $2 AND active = TRUE`,
		accountID, p.ID, p.FirstName, p.LastName, p.NationalID, p.BirthDate, p.Sex,
		p.Phone, p.PhoneAlt, p.Email, p.Coverage, p.Plan, p.MemberNum,
		p.City, p.Address, p.Occupation, p.PreexistingConditions,
		p.Allergies, p.Notes, p.BloodPressure, p.WeightMin, p.WeightMax,
		p.BMI, p.Height, p.TargetWeight, p.Medication, p.Exercise,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("national id already registered: %w", httperr.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func (r *repoPG) SoftDelete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET active = FALSE
		WHERE account_id = $1 AND id = $2 AND active = TRUE`, accountID, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
