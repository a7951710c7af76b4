package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses form a closed set. Transitions between them are
// free-form: any status may follow any other.
const (
	StatusScheduled = "scheduled"
	StatusWaiting   = "waiting"
	StatusAttended  = "attended"
	StatusAbsent    = "absent"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusWaiting:   true,
	StatusAttended:  true,
	StatusAbsent:    true,
	StatusCancelled: true,
}

// Appointment maps to the appointments table. A slot names its subject
// either through the patient reference or through the temporary name
// pair kept for walk-ins.
type Appointment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AccountID   uuid.UUID  `db:"account_id" json:"-"`
	PatientID   *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Day         time.Time  `db:"day" json:"day"`
	TimeOfDay   string     `db:"time_of_day" json:"time_of_day"`
	Coverage    *string    `db:"coverage" json:"coverage,omitempty"`
	Status      string     `db:"status" json:"status"`
	ArrivalTime *string    `db:"arrival_time" json:"arrival_time,omitempty"`
	Detail      *string    `db:"detail" json:"detail,omitempty"`
	FirstVisit  bool       `db:"first_visit" json:"first_visit"`
	VisitID     *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`

	TempFirstName *string `db:"temp_first_name" json:"temp_first_name,omitempty"`
	TempLastName  *string `db:"temp_last_name" json:"temp_last_name,omitempty"`

	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Resolved display name, see resolveName.
	FirstName string `db:"-" json:"first_name"`
	LastName  string `db:"-" json:"last_name"`

	// Exposed from the joined active patient, when there is one.
	PatientNationalID *string `db:"-" json:"patient_national_id,omitempty"`
	PatientPhone      *string `db:"-" json:"patient_phone,omitempty"`
	PatientCoverage   *string `db:"-" json:"patient_coverage,omitempty"`

	// Scanned from the left join against active patients.
	joinedFirstName *string
	joinedLastName  *string
}

// resolveName fills the display name: the joined patient's name when the
// reference resolves to an active patient, the temporary fields
// otherwise. A soft-deleted patient therefore falls back to whatever
// temporary name the appointment carries.
func (a *Appointment) resolveName() {
	if a.joinedFirstName != nil || a.joinedLastName != nil {
		a.FirstName = deref(a.joinedFirstName)
		a.LastName = deref(a.joinedLastName)
		return
	}
	a.FirstName = deref(a.TempFirstName)
	a.LastName = deref(a.TempLastName)
}

// hasNameSource reports whether the appointment names its subject at
// all: a patient reference or a complete temporary name pair.
func (a *Appointment) hasNameSource() bool {
	if a.PatientID != nil && *a.PatientID != uuid.Nil {
		return true
	}
	return deref(a.TempFirstName) != "" && deref(a.TempLastName) != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
