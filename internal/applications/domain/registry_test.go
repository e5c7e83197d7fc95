package domain

import "testing"

func TestNewRegistryVerifies(t *testing.T) {
	if _, err := NewRegistry(); err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
}

func TestRegistryEntryStatuses(t *testing.T) {
	reg := MustNewRegistry()

	want := map[Stage]string{
		StageIntake:     StatusNewApplication,
		StageUniversity: StatusSentToUniversity,
		StageVisa:       StatusWaitingVisaPayment,
		StageArrival:    StatusArrivalDatePlanning,
		StageCommission: StatusCommissionPending,
	}

	for stage, status := range want {
		if got := reg.EntryStatus(stage); got != status {
			t.Errorf("EntryStatus(%d) = %q, want %q", stage, got, status)
		}
		if _, ok := reg.Lookup(stage, status); !ok {
			t.Errorf("entry status (%d, %s) is not a registry key", stage, status)
		}
	}
}

func TestRegistryTransitionsStayWithinStage(t *testing.T) {
	reg := MustNewRegistry()

	for stage := StageIntake; stage <= StageCommission; stage++ {
		for _, status := range reg.StatusesForStage(stage) {
			def, ok := reg.Lookup(stage, status)
			if !ok {
				t.Fatalf("StatusesForStage(%d) listed %q but Lookup missed", stage, status)
			}

			for actor, targets := range def.Transitions {
				for _, target := range targets {
					if _, ok := reg.Lookup(stage, target); !ok {
						t.Errorf("(%d, %s) %s target %q is not in stage %d", stage, status, actor, target, stage)
					}
				}
			}

			if def.AutoProgressTo != "" {
				if _, ok := reg.Lookup(stage, def.AutoProgressTo); !ok {
					t.Errorf("(%d, %s) auto-progresses to unknown %q", stage, status, def.AutoProgressTo)
				}
			}
		}
	}
}

func TestRegistryTerminalStatusesHaveNoTransitions(t *testing.T) {
	reg := MustNewRegistry()

	terminals := 0
	for stage := StageIntake; stage <= StageCommission; stage++ {
		for _, status := range reg.StatusesForStage(stage) {
			def, _ := reg.Lookup(stage, status)
			if !def.Terminal {
				continue
			}
			terminals++
			for actor, targets := range def.Transitions {
				if len(targets) > 0 {
					t.Errorf("terminal (%d, %s) has %d transitions for %s", stage, status, len(targets), actor)
				}
			}
		}
	}

	if terminals == 0 {
		t.Fatal("registry declares no terminal statuses")
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	reg := MustNewRegistry()

	if _, ok := reg.Lookup(StageIntake, "no_such_status"); ok {
		t.Error("Lookup returned ok for an unknown status")
	}
	if _, ok := reg.Lookup(StageVisa, StatusNewApplication); ok {
		t.Error("Lookup returned ok for a status from another stage")
	}
}

func TestRegistryIsTerminal(t *testing.T) {
	reg := MustNewRegistry()

	cases := []struct {
		stage  Stage
		status string
		want   bool
	}{
		{StageIntake, StatusRejectedStage1, true},
		{StageUniversity, StatusUniversityRejected, true},
		{StageVisa, StatusVisaRejected, true},
		{StageArrival, StatusArrivalCancelled, true},
		{StageCommission, StatusCommissionPaid, true},
		{StageCommission, StatusDisputeUnresolved, true},
		{StageIntake, StatusDocumentsRequired, false},
		{StageIntake, "no_such_status", false},
	}

	for _, tc := range cases {
		if got := reg.IsTerminal(tc.stage, tc.status); got != tc.want {
			t.Errorf("IsTerminal(%d, %q) = %v, want %v", tc.stage, tc.status, got, tc.want)
		}
	}
}
