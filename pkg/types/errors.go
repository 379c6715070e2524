package types

import "errors"

// These sentinels classify the errors a handler can return from
// Handle. The dispatcher treats them differently: a transient
// datastore error bubbles up so the supervisor can restart the
// pipeline; a malformed event or a constraint violation is logged and
// dropped so one bad record never stalls the stream. Handlers should
// wrap one of these with fmt.Errorf's %w, not return bare errors, so
// errors.Is classification survives through the handler boundary.
var (
	ErrDatastoreTransient  = errors.New("datastore: transient error")
	ErrMalformedEvent      = errors.New("event: malformed")
	ErrConstraintViolation = errors.New("datastore: constraint violation")
)
