package guard

// Check applies the three permission tiers in order. Any failure
// short-circuits with a denial naming the missing scope.
//
//  1. actor must hold the base scope;
//  2. if actingAs names a subject other than the actor, the _sudo variant
//     is additionally required;
//  3. if adminNeeded is true (the per-operation override predicate, e.g.
//     "resource is closed" or "resource belongs to someone else"), the
//     _admin variant is additionally required.
//
// Adding permissions can only turn denials into allowals, never the
// reverse: each tier only ever requires more scopes.
func Check(actor Subject, scope Scope, actingAs string, adminNeeded bool) Decision {
	if !actor.Has(scope) {
		return deny(scope)
	}

	if actingAs != "" && actingAs != actor.ID && !actor.Has(scope.Sudo()) {
		return deny(scope.Sudo())
	}

	if adminNeeded && !actor.Has(scope.Admin()) {
		return deny(scope.Admin())
	}

	return allow()
}

// ActingAs resolves the effective subject of an operation: the explicit
// acting-on-behalf-of parameter when present, the actor itself otherwise.
func ActingAs(actor Subject, user string) string {
	if user == "" {
		return actor.ID
	}
	return user
}
