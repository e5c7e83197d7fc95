package domain

import (
	"fmt"
	"sort"
)

// registryKey identifies one registry row.
type registryKey struct {
	stage  Stage
	status string
}

// Registry is the canonical authority table: every (stage, status) pair the
// workflow can be in, with its transition lists and structural flags. It is
// built once at process start, verified, and read-only thereafter.
type Registry struct {
	defs    map[registryKey]StatusDefinition
	byStage map[Stage][]string
	entry   map[Stage]string
}

// entryStatuses maps each stage to the status a record carries when the
// stage begins.
var entryStatuses = map[Stage]string{
	StageIntake:     StatusNewApplication,
	StageUniversity: StatusSentToUniversity,
	StageVisa:       StatusWaitingVisaPayment,
	StageArrival:    StatusArrivalDatePlanning,
	StageCommission: StatusCommissionPending,
}

// NewRegistry builds the registry from the static stage tables and verifies
// its structural invariants. An error here is a configuration bug and should
// be fatal at startup.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		defs:    make(map[registryKey]StatusDefinition),
		byStage: make(map[Stage][]string),
		entry:   entryStatuses,
	}

	tables := [][]StatusDefinition{
		intakeStatuses(),
		universityStatuses(),
		visaStatuses(),
		arrivalStatuses(),
		commissionStatuses(),
	}

	for _, table := range tables {
		for _, def := range table {
			k := registryKey{stage: def.Stage, status: def.Status}
			if _, exists := r.defs[k]; exists {
				return nil, fmt.Errorf("duplicate registry row (%d, %s)", def.Stage, def.Status)
			}
			r.defs[k] = def
			r.byStage[def.Stage] = append(r.byStage[def.Stage], def.Status)
		}
	}

	if err := r.verify(); err != nil {
		return nil, err
	}

	return r, nil
}

// MustNewRegistry builds the registry or panics. Intended for composition
// roots and tests where a broken registry must stop the process.
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic("workflow registry: " + err.Error())
	}
	return r
}

// Lookup returns the definition for (stage, status). The second return value
// is false when the pair is not a registry key; callers must treat that as a
// configuration error, not user input error.
func (r *Registry) Lookup(stage Stage, status string) (StatusDefinition, bool) {
	def, ok := r.defs[registryKey{stage: stage, status: status}]
	return def, ok
}

// EntryStatus returns the first status of the given stage.
func (r *Registry) EntryStatus(stage Stage) string {
	return r.entry[stage]
}

// StatusesForStage returns the status keys declared for a stage, sorted.
func (r *Registry) StatusesForStage(stage Stage) []string {
	statuses := make([]string, len(r.byStage[stage]))
	copy(statuses, r.byStage[stage])
	sort.Strings(statuses)
	return statuses
}

// IsTerminal reports whether (stage, status) ends the workflow. Unknown
// pairs are not terminal; they are configuration errors surfaced elsewhere.
func (r *Registry) IsTerminal(stage Stage, status string) bool {
	def, ok := r.Lookup(stage, status)
	return ok && def.Terminal
}

// verify checks the construction-time invariants: every transition target
// and auto-progress target is a registry key in the same stage, terminal
// rows have no outgoing transitions for any actor, and every status in a
// stage is reachable from that stage's entry status.
func (r *Registry) verify() error {
	for k, def := range r.defs {
		if def.Terminal {
			for actor, targets := range def.Transitions {
				if len(targets) > 0 {
					return fmt.Errorf("terminal status (%d, %s) has transitions for %s", k.stage, k.status, actor)
				}
			}
		}

		for actor, targets := range def.Transitions {
			for _, target := range targets {
				if _, ok := r.Lookup(k.stage, target); !ok {
					return fmt.Errorf("status (%d, %s) transition for %s targets unknown status %q", k.stage, k.status, actor, target)
				}
			}
		}

		if def.AutoProgressTo != "" {
			if _, ok := r.Lookup(k.stage, def.AutoProgressTo); !ok {
				return fmt.Errorf("status (%d, %s) auto-progresses to unknown status %q", k.stage, k.status, def.AutoProgressTo)
			}
		}
	}

	for stage, entry := range r.entry {
		if _, ok := r.Lookup(stage, entry); !ok {
			return fmt.Errorf("stage %d entry status %q is not a registry key", stage, entry)
		}
		if err := r.verifyReachable(stage, entry); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) verifyReachable(stage Stage, entry string) error {
	visited := map[string]bool{entry: true}
	queue := []string{entry}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		def, _ := r.Lookup(stage, current)
		next := map[string]bool{}
		for _, targets := range def.Transitions {
			for _, t := range targets {
				next[t] = true
			}
		}
		if def.AutoProgressTo != "" {
			next[def.AutoProgressTo] = true
		}

		for t := range next {
			if !visited[t] {
				visited[t] = true
				queue = append(queue, t)
			}
		}
	}

	for _, status := range r.byStage[stage] {
		if !visited[status] {
			return fmt.Errorf("stage %d status %q is unreachable from entry %q", stage, status, entry)
		}
	}

	return nil
}
