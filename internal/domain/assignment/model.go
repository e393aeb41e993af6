package assignment

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a read-only view over the externally managed patients table.
// UserID links the patient to a portal login; AssignedDoctorID is nil while
// the patient is waiting for an assignment.
type Patient struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	UserID           *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	AssignedDoctorID *uuid.UUID `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
