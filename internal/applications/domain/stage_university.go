package domain

// universityStatuses is the stage-2 sub-graph: the university reviews the
// forwarded application, may request additional documents, and the stage ends
// in offer_letter_issued (composed into stage 3) or university_rejected.
func universityStatuses() []StatusDefinition {
	return []StatusDefinition{
		{
			Stage:  StageUniversity,
			Status: StatusSentToUniversity,
			SetBy:  ActorSystem,
			Transitions: map[Actor][]string{
				ActorUniversity: {StatusUniversityUnderReview, StatusUniversityApproved, StatusUniversityRejected},
				ActorAdmin:      {StatusUniversityUnderReview},
			},
			WaitingOn:  ActorUniversity,
			NextAction: "review_application",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "university", TemplateKey: "application_forwarded"},
			},
		},
		{
			Stage:        StageUniversity,
			Status:       StatusUniversityUnderReview,
			SetBy:        ActorUniversity,
			ReviewStatus: true,
			Transitions: map[Actor][]string{
				ActorUniversity: {StatusAdditionalDocsRequired, StatusUniversityApproved, StatusUniversityRejected},
			},
			WaitingOn:  ActorUniversity,
			NextAction: "complete_university_review",
		},
		{
			Stage:        StageUniversity,
			Status:       StatusAdditionalDocsRequired,
			SetBy:        ActorUniversity,
			UploadStatus: true,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusAdditionalDocsSubmitted},
				ActorAdmin:   {StatusAdditionalDocsSubmitted},
				ActorSystem:  {StatusAdditionalDocsSubmitted},
			},
			WaitingOn:  ActorPartner,
			NextAction: "upload_additional_documents",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "additional_documents_requested"},
			},
		},
		{
			Stage:  StageUniversity,
			Status: StatusAdditionalDocsSubmitted,
			SetBy:  ActorPartner,
			Transitions: map[Actor][]string{
				ActorUniversity: {StatusUniversityApproved, StatusUniversityRejected, StatusAdditionalDocsRequired},
			},
			WaitingOn:  ActorUniversity,
			NextAction: "review_additional_documents",
		},
		{
			Stage:  StageUniversity,
			Status: StatusUniversityApproved,
			SetBy:  ActorUniversity,
			Transitions: map[Actor][]string{
				ActorAdmin:      {StatusOfferLetterIssued},
				ActorUniversity: {StatusOfferLetterIssued},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "issue_offer_letter",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "university_approved"},
			},
		},
		{
			// Stage-2 completion: composed into (3, waiting_visa_payment)
			// together with the generated offer letter and payment request.
			Stage:       StageUniversity,
			Status:      StatusOfferLetterIssued,
			SetBy:       ActorAdmin,
			Transitions: map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "offer_letter_issued"},
			},
		},
		{
			Stage:          StageUniversity,
			Status:         StatusUniversityRejected,
			SetBy:          ActorUniversity,
			Terminal:       true,
			RequiresReason: true,
			Transitions:    map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "university_rejected"},
			},
		},
	}
}
