package domain

// arrivalStatuses is the stage-4 sub-graph: the arrival date is planned and
// confirmed, the student arrives and enrolls, and the stage ends in
// enrollment_confirmed (composed into stage 5) or arrival_cancelled.
func arrivalStatuses() []StatusDefinition {
	return []StatusDefinition{
		{
			Stage:  StageArrival,
			Status: StatusArrivalDatePlanning,
			SetBy:  ActorSystem,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusArrivalDateConfirmed},
				ActorAdmin:   {StatusArrivalDateConfirmed, StatusArrivalCancelled},
			},
			WaitingOn:  ActorPartner,
			NextAction: "confirm_arrival_date",
		},
		{
			Stage:        StageArrival,
			Status:       StatusArrivalDateConfirmed,
			SetBy:        ActorPartner,
			RequiresDate: true,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusStudentArrived},
				ActorAdmin:   {StatusStudentArrived, StatusArrivalCancelled},
			},
			WaitingOn:  ActorPartner,
			NextAction: "report_arrival",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "university", TemplateKey: "arrival_date_confirmed"},
			},
		},
		{
			Stage:  StageArrival,
			Status: StatusStudentArrived,
			SetBy:  ActorPartner,
			Transitions: map[Actor][]string{
				ActorUniversity: {StatusEnrollmentInProgress},
				ActorAdmin:      {StatusEnrollmentInProgress, StatusArrivalCancelled},
			},
			WaitingOn:  ActorUniversity,
			NextAction: "begin_enrollment",
		},
		{
			Stage:  StageArrival,
			Status: StatusEnrollmentInProgress,
			SetBy:  ActorUniversity,
			Transitions: map[Actor][]string{
				ActorUniversity: {StatusEnrollmentConfirmed},
				ActorAdmin:      {StatusEnrollmentConfirmed, StatusArrivalCancelled},
			},
			WaitingOn:  ActorUniversity,
			NextAction: "confirm_enrollment",
		},
		{
			// Stage-4 completion: composed into (5, commission_pending);
			// the commission calculator fires exactly once on this edge.
			Stage:             StageArrival,
			Status:            StatusEnrollmentConfirmed,
			SetBy:             ActorUniversity,
			RequiredDocuments: []DocumentType{DocEnrollmentLetter},
			Transitions:       map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "enrollment_confirmed"},
			},
		},
		{
			Stage:          StageArrival,
			Status:         StatusArrivalCancelled,
			SetBy:          ActorAdmin,
			Terminal:       true,
			RequiresReason: true,
			Transitions:    map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "arrival_cancelled"},
			},
		},
	}
}
