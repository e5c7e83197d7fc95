// Package domain provides the core workflow rules for the applications
// bounded context: the status registry, the transition authority table, the
// rule evaluation pipeline, event-driven automation, and stage composition.
// Everything in this package is pure computation over application state.
package domain

// Actor is one of the parties that can move an application through the
// workflow. System is reserved for automation-initiated transitions.
type Actor string

const (
	ActorAdmin       Actor = "Admin"
	ActorPartner     Actor = "Partner"
	ActorUniversity  Actor = "University"
	ActorImmigration Actor = "Immigration"
	ActorSystem      Actor = "System"
)

// AllActors lists every known actor, in a stable order.
var AllActors = []Actor{ActorAdmin, ActorPartner, ActorUniversity, ActorImmigration, ActorSystem}

// ParseActor maps a role string to an Actor. The second return value is
// false for unknown roles.
func ParseActor(role string) (Actor, bool) {
	switch Actor(role) {
	case ActorAdmin, ActorPartner, ActorUniversity, ActorImmigration, ActorSystem:
		return Actor(role), true
	default:
		return "", false
	}
}
