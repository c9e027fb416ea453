// Package collab describes the two collaborator modules rewritten files depend on:
// the typed exception kinds and the response builders. Only the contract lives here;
// the TypeScript implementations belong to the target project.
package collab

import (
	"fmt"
	"strings"
)

// Kind is one constructible exception kind. Each takes a single message string.
type Kind struct {
	Name           string // Exported class name
	Status         int    // Status the response translator recovers
	Code           string // Machine-readable error code
	DefaultMessage string
}

// Kinds in the order they appear in the inserted import.
var Kinds = []Kind{
	{Name: "AuthenticationError", Status: 401, Code: "UNAUTHORIZED", DefaultMessage: "Authentication required"},
	{Name: "AuthorizationError", Status: 403, Code: "FORBIDDEN", DefaultMessage: "Insufficient permissions"},
	{Name: "ValidationError", Status: 400, Code: "VALIDATION_ERROR", DefaultMessage: "Validation failed"},
	{Name: "NotFoundError", Status: 404, Code: "NOT_FOUND", DefaultMessage: "Resource not found"},
	{Name: "ConflictError", Status: 409, Code: "CONFLICT", DefaultMessage: "Resource conflict"},
	{Name: "DatabaseError", Status: 500, Code: "DATABASE_ERROR", DefaultMessage: "Database operation failed"},
	{Name: "ExternalServiceError", Status: 502, Code: "EXTERNAL_SERVICE_ERROR", DefaultMessage: "External service error"},
	{Name: "InternalServerError", Status: 500, Code: "INTERNAL_SERVER_ERROR", DefaultMessage: "Internal server error"},
	{Name: "RateLimitError", Status: 429, Code: "RATE_LIMIT", DefaultMessage: "Too many requests"},
}

// Response builder names.
const (
	Success   = "successResponse"
	Error     = "errorResponse"
	Created   = "createdResponse"
	NoContent = "noContentResponse"
)

// Builders in the order they appear in the inserted import.
var Builders = []string{Success, Error, Created, NoContent}

// KindForStatus returns the kind a status maps to. 500 is ambiguous and never mapped.
func KindForStatus(status int) (Kind, bool) {
	if status == 500 {
		return Kind{}, false
	}
	for _, k := range Kinds {
		if k.Status == status {
			return k, true
		}
	}
	return Kind{}, false
}

// KindNames lists the exception class names in import order.
func KindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = k.Name
	}
	return names
}

// ImportLine renders a named import statement.
func ImportLine(module string, names []string) string {
	return fmt.Sprintf("import { %s } from %q;", strings.Join(names, ", "), module)
}
