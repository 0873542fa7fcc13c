package domain

const (
	// SubjectCtxKey carries the authenticated guard.Subject through the
	// request context once the auth middleware has verified the bearer.
	SubjectCtxKey = "lfg-subject"
)
