// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeNotFound,
//	    "failed to load user-data",
//	    err,
//	    map[string]any{
//	        "source": "cm://provisioning/web-01",
//	    },
//	)
//
// Callers that only need the classification use CodeOf, which looks through
// fmt.Errorf("%w") wrapping:
//
//	if errors.CodeOf(err) == errors.ErrCodeNotFound {
//	    ...
//	}
package errors
