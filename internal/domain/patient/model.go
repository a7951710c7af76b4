package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. Soft-deleted rows keep their data
// so visit and appointment history stays resolvable.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	AccountID  uuid.UUID  `db:"account_id" json:"-"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	NationalID *string    `db:"national_id" json:"national_id,omitempty"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Sex        *string    `db:"sex" json:"sex,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	PhoneAlt   *string    `db:"phone_alt" json:"phone_alt,omitempty"`
	Email      *string    `db:"email" json:"email,omitempty"`
	Coverage   *string    `db:"coverage" json:"coverage,omitempty"`
	Plan       *string    `db:"plan" json:"plan,omitempty"`
	MemberNum  *string    `db:"member_number" json:"member_number,omitempty"`
	City       *string    `db:"city" json:"city,omitempty"`
	Address    *string    `db:"address" json:"address,omitempty"`
	Occupation *string    `db:"occupation" json:"occupation,omitempty"`

	PreexistingConditions *string `db:"preexisting_conditions" json:"preexisting_conditions,omitempty"`
	Allergies             *string `db:"allergies" json:"allergies,omitempty"`
	Notes                 *string `db:"notes" json:"notes,omitempty"`
	BloodPressure         *string `db:"blood_pressure" json:"blood_pressure,omitempty"`
	WeightMin             *string `db:"weight_min" json:"weight_min,omitempty"`
	WeightMax             *string `db:"weight_max" json:"weight_max,omitempty"`
	BMI                   *string `db:"bmi" json:"bmi,omitempty"`
	Height                *string `db:"height" json:"height,omitempty"`
	TargetWeight          *string `db:"target_weight" json:"target_weight,omitempty"`
	Medication            *string `db:"medication" json:"medication,omitempty"`
	Exercise              *string `db:"exercise" json:"exercise,omitempty"`

	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Normalize trims the name pair and collapses blank optional fields to
// nil so empty strings never reach storage.
func (p *Patient) Normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	for _, f := range []**string{
		&p.NationalID, &p.Sex, &p.Phone, &p.PhoneAlt, &p.Email,
		&p.Coverage, &p.Plan, &p.MemberNum, &p.City, &p.Address, &p.Occupation,
		&p.PreexistingConditions, &p.Allergies, &p.Notes,
		&p.BloodPressure, &p.WeightMin, &p.WeightMax, &p.BMI,
		&p.Height, &p.TargetWeight, &p.Medication, &p.Exercise,
	} {
		if *f == nil {
			continue
		}
		trimmed := strings.TrimSpace(**f)
		if trimmed == "" {
			*f = nil
		} else {
			*f = &trimmed
		}
	}
}
