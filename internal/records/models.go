package records

import (
	"time"

	"github.com/google/uuid"

	"github.com/jcjuneja-hospital/triage-service/internal/triage"
)

// Status is the staff-facing urgency bucket derived from a terminal report.
type Status string

const (
	StatusCritical Status = "Critical"
	StatusUrgent   Status = "Urgent"
	StatusStable   Status = "Stable"
	StatusPending  Status = "Pending"
)

// PatientRecord is one completed triage session. Created exactly once, when
// a terminal report is produced, and never mutated afterwards.
type PatientRecord struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Intake    triage.IntakeData `json:"intake"`
	Triage    triage.Report     `json:"triage"`
	Status    Status            `json:"status"`
}

// NewPatientRecord freezes an intake/report pair into a record. The status
// is a pure function of the report at creation time and is never recomputed.
func NewPatientRecord(intake triage.IntakeData, report triage.Report) PatientRecord {
	return PatientRecord{
		ID:        "JCJH-" + uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Intake:    intake,
		Triage:    report,
		Status:    DeriveStatus(report),
	}
}

// DeriveStatus classifies a terminal report: any red flag is Critical; else
// any High-probability condition is Urgent; else Stable.
func DeriveStatus(report triage.Report) Status {
	if len(report.RedFlags) > 0 {
		return StatusCritical
	}
	for _, c := range report.ProbableConditions {
		if c.Probability == triage.ProbabilityHigh {
			return StatusUrgent
		}
	}
	return StatusStable
}
