package visit

import (
	"time"

	"github.com/google/uuid"
)

// Visit maps to the visits table. Unlike patients, visits delete
// physically: there is no active flag.
type Visit struct {
	ID         uuid.UUID `db:"id" json:"id"`
	AccountID  uuid.UUID `db:"account_id" json:"-"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	VisitDate  time.Time `db:"visit_date" json:"visit_date"`
	VisitTime  string    `db:"visit_time" json:"visit_time"`
	Reason     *string   `db:"reason" json:"reason,omitempty"`
	Report     *string   `db:"report" json:"report,omitempty"`
	Diagnosis  *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment  *string   `db:"treatment" json:"treatment,omitempty"`
	Studies    *string   `db:"studies" json:"studies,omitempty"`
	Attachment *string   `db:"attachment" json:"attachment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	// Joined from patients on read paths.
	PatientFirstName *string `db:"-" json:"patient_first_name,omitempty"`
	PatientLastName  *string `db:"-" json:"patient_last_name,omitempty"`
}
