package domain

// intakeStatuses is the stage-1 sub-graph: partner submits a new application,
// admin reviews the uploaded documents, and the stage ends in approved_stage1
// (composed into stage 2) or rejected_stage1 (terminal).
func intakeStatuses() []StatusDefinition {
	return []StatusDefinition{
		{
			Stage:  StageIntake,
			Status: StatusNewApplication,
			SetBy:  ActorPartner,
			Transitions: map[Actor][]string{
				ActorAdmin:  {StatusDocumentsRequired, StatusRejectedStage1},
				ActorSystem: {StatusDocumentsRequired},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "review_intake",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "admin", TemplateKey: "application_received"},
			},
		},
		{
			Stage:        StageIntake,
			Status:       StatusDocumentsRequired,
			SetBy:        ActorAdmin,
			UploadStatus: true,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusDocumentsSubmitted},
				ActorAdmin:   {StatusDocumentsSubmitted, StatusRejectedStage1},
				ActorSystem:  {StatusDocumentsSubmitted},
			},
			WaitingOn:  ActorPartner,
			NextAction: "upload_documents",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "documents_requested"},
			},
		},
		{
			Stage:             StageIntake,
			Status:            StatusDocumentsSubmitted,
			SetBy:             ActorPartner,
			RequiredDocuments: []DocumentType{DocPassport, DocTranscript, DocEnglishTest},
			Transitions: map[Actor][]string{
				ActorAdmin:  {StatusDocumentsUnderReview, StatusDocumentsApproved, StatusDocumentsRejected, StatusRejectedStage1},
				ActorSystem: {StatusDocumentsUnderReview},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "review_documents",
		},
		{
			Stage:        StageIntake,
			Status:       StatusDocumentsUnderReview,
			SetBy:        ActorAdmin,
			ReviewStatus: true,
			Transitions: map[Actor][]string{
				ActorAdmin: {StatusDocumentsApproved, StatusDocumentsRejected, StatusRejectedStage1},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "complete_document_review",
		},
		{
			Stage:          StageIntake,
			Status:         StatusDocumentsRejected,
			SetBy:          ActorAdmin,
			RequiresReason: true,
			UploadStatus:   true,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusDocumentsSubmitted},
				ActorAdmin:   {StatusDocumentsRequired},
			},
			WaitingOn:  ActorPartner,
			NextAction: "correct_documents",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "documents_rejected"},
			},
		},
		{
			Stage:  StageIntake,
			Status: StatusDocumentsApproved,
			SetBy:  ActorAdmin,
			Transitions: map[Actor][]string{
				ActorAdmin: {StatusApprovedStage1, StatusRejectedStage1},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "finalize_intake_decision",
		},
		{
			// Stage-1 completion: the composer replaces this pair with
			// (2, sent_to_university); records never rest here.
			Stage:       StageIntake,
			Status:      StatusApprovedStage1,
			SetBy:       ActorAdmin,
			Transitions: map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "stage1_approved"},
			},
		},
		{
			Stage:          StageIntake,
			Status:         StatusRejectedStage1,
			SetBy:          ActorAdmin,
			Terminal:       true,
			RequiresReason: true,
			Transitions:    map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "application_rejected"},
			},
		},
	}
}
