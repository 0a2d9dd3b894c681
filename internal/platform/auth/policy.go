package auth

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Operation names a guarded capability. Routes are gated on operations
// rather than on role literals so the full role/operation matrix is
// visible in one place.
type Operation string

const (
	OpDirectoryManage     Operation = "directory.manage"
	OpPatientManage       Operation = "patient.manage"
	OpAppointmentOverride Operation = "appointment.override"
	OpAvailabilityManage  Operation = "availability.manage"
	OpClinicalUpdate      Operation = "appointment.clinical"
	OpAppointmentBook     Operation = "appointment.book"
	OpProfileUpdate       Operation = "profile.update"
	OpDashboardView       Operation = "dashboard.view"
)

// Policy maps each operation to the roles allowed to perform it.
// Operations absent from the table are denied for everyone.
type Policy map[Operation][]string

// DefaultPolicy returns the role/operation matrix the server is built
// with.
func DefaultPolicy() Policy {
	return Policy{
		OpDirectoryManage:     {"admin"},
		OpPatientManage:       {"admin"},
		OpAppointmentOverride: {"admin"},
		OpAvailabilityManage:  {"doctor"},
		OpClinicalUpdate:      {"doctor"},
		OpAppointmentBook:     {"patient"},
		OpProfileUpdate:       {"patient", "admin"},
		OpDashboardView:       {"admin"},
	}
}

// Allows reports whether role may perform op.
func (p Policy) Allows(op Operation, role string) bool {
	for _, allowed := range p[op] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Require returns middleware that rejects callers whose role is not
// allowed to perform op.
func Require(policy Policy, op Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if !policy.Allows(op, role) {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("operation %s not permitted", op))
			}
			return next(c)
		}
	}
}
