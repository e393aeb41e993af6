package assignment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrPatientNotFound = errors.New("patient not found")

// Directory resolves patient identity and doctor assignment. Assignment is
// owned elsewhere; the messaging core only reads through this interface.
type Directory interface {
	// ResolveDoctor returns the patient's assigned doctor, or nil when the
	// patient exists but has no assignment yet.
	ResolveDoctor(ctx context.Context, patientID uuid.UUID) (*uuid.UUID, error)
	GetPatient(ctx context.Context, patientID uuid.UUID) (*Patient, error)
	// GetPatientByUser looks up the patient record linked to a portal user.
	GetPatientByUser(ctx context.Context, userID uuid.UUID) (*Patient, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Patient, error)
}
