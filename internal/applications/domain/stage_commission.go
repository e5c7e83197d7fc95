package domain

// commissionStatuses is the stage-5 sub-graph: the commission is calculated,
// the partner invoices it, and the flow ends in commission_paid (terminal
// success) or dispute_unresolved (terminal failure).
func commissionStatuses() []StatusDefinition {
	return []StatusDefinition{
		{
			Stage:  StageCommission,
			Status: StatusCommissionPending,
			SetBy:  ActorSystem,
			Transitions: map[Actor][]string{
				ActorSystem: {StatusCommissionCalculated},
				ActorAdmin:  {StatusCommissionCalculated},
			},
			WaitingOn:  ActorSystem,
			NextAction: "calculate_commission",
			// Automation follows this edge only on effect_completed, after
			// the calculator has actually recorded the payout. The status
			// stays pending if the calculator fails.
			AutoProgressTo: StatusCommissionCalculated,
		},
		{
			Stage:  StageCommission,
			Status: StatusCommissionCalculated,
			SetBy:  ActorSystem,
			Transitions: map[Actor][]string{
				ActorPartner: {StatusInvoiceSubmitted, StatusCommissionDisputed},
				ActorAdmin:   {StatusInvoiceSubmitted},
			},
			WaitingOn:  ActorPartner,
			NextAction: "submit_invoice",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "commission_calculated"},
			},
		},
		{
			Stage:         StageCommission,
			Status:        StatusInvoiceSubmitted,
			SetBy:         ActorPartner,
			PaymentStatus: true,
			Transitions: map[Actor][]string{
				ActorAdmin: {StatusCommissionPaid, StatusCommissionDisputed},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "pay_commission",
		},
		{
			Stage:                StageCommission,
			Status:               StatusCommissionPaid,
			SetBy:                ActorAdmin,
			Terminal:             true,
			RequiresConfirmation: true,
			Transitions:          map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "commission_paid"},
			},
		},
		{
			Stage:          StageCommission,
			Status:         StatusCommissionDisputed,
			SetBy:          ActorPartner,
			RequiresReason: true,
			Transitions: map[Actor][]string{
				ActorAdmin: {StatusDisputeResolved, StatusDisputeUnresolved},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "resolve_dispute",
			NotificationTriggers: []NotificationTrigger{
				{Audience: "admin", TemplateKey: "commission_disputed"},
			},
		},
		{
			Stage:  StageCommission,
			Status: StatusDisputeResolved,
			SetBy:  ActorAdmin,
			Transitions: map[Actor][]string{
				ActorAdmin: {StatusCommissionPaid},
			},
			WaitingOn:  ActorAdmin,
			NextAction: "pay_commission",
		},
		{
			Stage:          StageCommission,
			Status:         StatusDisputeUnresolved,
			SetBy:          ActorAdmin,
			Terminal:       true,
			RequiresReason: true,
			Transitions:    map[Actor][]string{},
			NotificationTriggers: []NotificationTrigger{
				{Audience: "partner", TemplateKey: "dispute_unresolved"},
			},
		},
	}
}
