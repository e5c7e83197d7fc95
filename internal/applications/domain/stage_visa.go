package domain

// visaStatuses is the stage-3 sub-graph: the partner settles the visa
// payment, the admin prepares and submits the immigration file, and the
// stage ends in visa_issued (composed into stage 4) or visa_rejected.
func visaStatuses() []StatusDefinition {
	return []StatusDefinition{
		{
			Stage:  StageVisa,
			Status: StatusWaitingVisaPayment,
			SetBy:  ActorSystem,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusPaymentReceived},
				ActorAdmin:   {StatusPaymentReceived, StatusVisaRejected},
			},
			WaitingOn:  ActorPartner,
			NextAction: "submit_visa_payment",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "visa_payment_due"},
			},
		},
		{
			Stage:         StageVisa,
			Status:        StatusPaymentReceived,
			SetBy:         ActorPartner,
			PaymentStatus: true,
			Transitions: map[Actor][]string{
				ActorAdmin: {StatusVisaDocsPreparation, StatusPaymentRejected},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "verify_payment",
		},
		{
			Stage:          StageVisa,
			Status:         StatusPaymentRejected,
			SetBy:          ActorAdmin,
			RequiresReason: true,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusPaymentReceived},
			},
			WaitingOn:  ActorPartner,
			NextAction: "resubmit_payment",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "payment_rejected"},
			},
		},
		{
			Stage:  StageVisa,
			Status: StatusVisaDocsPreparation,
			SetBy:  ActorAdmin,
			Transitions: map[Actor][]string{
				ActorAdmin: {StatusSubmittedToImmigration},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "submit_to_immigration",
		},
		{
			Stage:            StageVisa,
			Status:           StatusSubmittedToImmigration,
			SetBy:            ActorAdmin,
			RequiresTracking: true,
			Transitions: map[Actor][]string{
				ActorImmigration: {StatusVisaUnderProcess, StatusAdditionalInfoRequired, StatusVisaIssued, StatusVisaRejected},
			},
			WaitingOn:  ActorImmigration,
			NextAction: "process_visa",
		},
		{
			Stage:        StageVisa,
			Status:       StatusVisaUnderProcess,
			SetBy:        ActorImmigration,
			ReviewStatus: true,
			Transitions: map[Actor][]string{
				ActorImmigration: {StatusAdditionalInfoRequired, StatusVisaIssued, StatusVisaRejected},
			},
			WaitingOn:  ActorImmigration,
			NextAction: "process_visa",
		},
		{
			Stage:        StageVisa,
			Status:       StatusAdditionalInfoRequired,
			SetBy:        ActorImmigration,
			UploadStatus: true,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusVisaUnderProcess},
				ActorAdmin:   {StatusVisaUnderProcess},
			},
			WaitingOn:  ActorPartner,
			NextAction: "provide_additional_info",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "visa_info_requested"},
			},
		},
		{
			// Stage-3 completion: composed into (4, arrival_date_planning).
			// Issuance requires both the immigration reference and the
			// confirmed arrival date.
			Stage:            StageVisa,
			Status:           StatusVisaIssued,
			SetBy:            ActorImmigration,
			RequiresDate:     true,
			RequiresTracking: true,
			Transitions:      map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "visa_issued"},
			},
		},
		{
			Stage:          StageVisa,
			Status:         StatusVisaRejected,
			SetBy:          ActorImmigration,
			Terminal:       true,
			RequiresReason: true,
			Transitions:    map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "visa_rejected"},
			},
		},
	}
}
