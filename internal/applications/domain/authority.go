package domain

import "fmt"

// DenialCode classifies why a transition was denied, so callers can render
// an accurate message.
type DenialCode string

const (
	// DenialNone means the transition is allowed.
	DenialNone DenialCode = ""
	// DenialUnknownStatus means (stage, status) is not a registry key.
	// This is a configuration error, not a user error.
	DenialUnknownStatus DenialCode = "unknown_status"
	// DenialNoAuthority means the actor has no transitions from this status
	// at all.
	DenialNoAuthority DenialCode = "no_authority"
	// DenialTargetNotAllowed means the actor has authority over this status
	// but not for the requested target.
	DenialTargetNotAllowed DenialCode = "target_not_allowed"
)

// Decision is the outcome of an authority check.
type Decision struct {
	Allowed bool
	Code    DenialCode
	Reason  string
}

// AuthorityChecker answers "who may move which status where" as a pure
// lookup over the registry. It never consults history or auxiliary data;
// business-rule validation is the pipeline's job.
type AuthorityChecker struct {
	reg *Registry
}

// NewAuthorityChecker creates a checker over the given registry.
func NewAuthorityChecker(reg *Registry) *AuthorityChecker {
	return &AuthorityChecker{reg: reg}
}

// CanActorTransition reports whether the actor has any transition out of
// (stage, status).
func (a *AuthorityChecker) CanActorTransition(stage Stage, status string, actor Actor) bool {
	def, ok := a.reg.Lookup(stage, status)
	if !ok {
		return false
	}
	return def.CanTransition(actor)
}

// AvailableTargets returns the actor's transition list for (stage, status).
// Unknown and terminal rows yield an empty set.
func (a *AuthorityChecker) AvailableTargets(stage Stage, status string, actor Actor) []string {
	def, ok := a.reg.Lookup(stage, status)
	if !ok {
		return nil
	}
	return def.TargetsFor(actor)
}

// ValidateTransition checks whether actor may move (stage, status) to
// target. The denial distinguishes missing authority from a disallowed
// target so the caller can report precisely.
func (a *AuthorityChecker) ValidateTransition(stage Stage, status, target string, actor Actor) Decision {
	def, ok := a.reg.Lookup(stage, status)
	if !ok {
		return Decision{
			Code:   DenialUnknownStatus,
			Reason: fmt.Sprintf("unknown status %q in stage %d", status, stage),
		}
	}

	if !def.CanTransition(actor) {
		return Decision{
			Code:   DenialNoAuthority,
			Reason: fmt.Sprintf("%s has no authority over status %q in stage %d", actor, status, stage),
		}
	}

	if !def.AllowsTarget(actor, target) {
		return Decision{
			Code:   DenialTargetNotAllowed,
			Reason: fmt.Sprintf("%s may not move status %q to %q in stage %d", actor, status, target, stage),
		}
	}

	return Decision{Allowed: true}
}
