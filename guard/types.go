package guard

// Scope is a permission string carried in the credential, e.g. "edit:lfg".
type Scope string

const (
	ReadLFG   Scope = "read:lfg"
	CreateLFG Scope = "create:lfg"
	EditLFG   Scope = "edit:lfg"
	StartLFG  Scope = "start:lfg"
	CancelLFG Scope = "cancel:lfg"
	AnswerLFG Scope = "answer:lfg"

	// Deleting announcements is admin-only at the base tier already.
	DeleteLFG Scope = "delete:lfg_admin"

	ReadWebhooks   Scope = "read:webhooks"
	CreateWebhooks Scope = "create:webhooks"
	DeleteWebhooks Scope = "delete:webhooks"
	TestWebhooks   Scope = "test:webhooks"
)

// Sudo is the acting-on-behalf-of variant of a base scope.
func (s Scope) Sudo() Scope {
	return s + "_sudo"
}

// Admin is the override variant of a base scope.
func (s Scope) Admin() Scope {
	return s + "_admin"
}

// Subject is an authenticated caller: its id and the permissions its
// credential carries.
type Subject struct {
	ID          string
	Permissions []string
}

func (s Subject) Has(scope Scope) bool {
	for _, p := range s.Permissions {
		if p == string(scope) {
			return true
		}
	}
	return false
}

// Decision is the outcome of a Check. When not allowed, Missing names the
// scope whose absence caused the denial.
type Decision struct {
	Allowed bool
	Missing Scope
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(missing Scope) Decision {
	return Decision{Missing: missing}
}
