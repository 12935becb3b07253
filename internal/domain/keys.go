package domain

type contextKey string

const (
	// KeyRequestID carries the per-request correlation ID set by middleware
	KeyRequestID contextKey = "RequestID"
	// KeyAdminSubject carries the authenticated admin identity on /admin routes
	KeyAdminSubject contextKey = "AdminSubject"
)
