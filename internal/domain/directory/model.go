// Package directory owns the clinical directory: departments and the
// doctor profiles that hang off user accounts.
package directory

import (
	"time"

	"github.com/google/uuid"
)

// Department maps to the departments table.
type Department struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
}

// DefaultDepartments are seeded when the table is empty.
func DefaultDepartments() []Department {
	return []Department{
		{Name: "Cardiology", Description: "Heart and vascular care"},
		{Name: "Orthopedics", Description: "Bone, joint, and muscle care"},
		{Name: "Pediatrics", Description: "Care for infants, children, and adolescents"},
		{Name: "Dermatology", Description: "Skin, hair, and nail care"},
		{Name: "General Medicine", Description: "Primary and preventive care"},
	}
}

// Doctor maps to the doctors table. The linked user row carries the
// doctor's name, email, and login credentials.
type Doctor struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	UserID              uuid.UUID `db:"user_id" json:"user_id"`
	DepartmentID        uuid.UUID `db:"department_id" json:"department_id"`
	Specialization      string    `db:"specialization" json:"specialization"`
	Room                string    `db:"room" json:"room"`
	AvailabilitySummary string    `db:"availability_summary" json:"availability_summary"`
	Bio                 string    `db:"bio" json:"bio"`
	Active              bool      `db:"active" json:"active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// DoctorListing is a doctor joined with its user and department, the
// shape search and roster endpoints return.
type DoctorListing struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	FullName            string    `json:"full_name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	DepartmentID        uuid.UUID `json:"department_id"`
	DepartmentName      string    `json:"department_name"`
	Specialization      string    `json:"specialization"`
	Room                string    `json:"room"`
	AvailabilitySummary string    `json:"availability_summary"`
	Bio                 string    `json:"bio"`
	Active              bool      `json:"active"`
}
