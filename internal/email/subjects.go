package email

const (
	subjectApplicationReceived = "New application received"
	subjectDocumentsRequested  = "Documents required for your application"
	subjectDocumentsRejected   = "Your documents need corrections"
	subjectApplicationRejected = "Application decision"
	subjectStageAdvanced       = "Your application moved forward"
	subjectOfferLetter         = "Offer letter issued"
	subjectCommissionDue       = "Commission payout ready"
	subjectSLABreach           = "High-priority application stalled"
)
