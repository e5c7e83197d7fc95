package domain

// Stage is one of the five sequential phases of the application lifecycle.
// Each stage is a closed sub-graph of statuses; cross-stage edges exist only
// at the completion statuses listed in the stage composer.
type Stage int

const (
	StageIntake     Stage = 1
	StageUniversity Stage = 2
	StageVisa       Stage = 3
	StageArrival    Stage = 4
	StageCommission Stage = 5
)

// Valid reports whether the stage is one of the five known phases.
func (s Stage) Valid() bool {
	return s >= StageIntake && s <= StageCommission
}

// Stage 1: intake review.
const (
	StatusNewApplication       = "new_application"
	StatusDocumentsRequired    = "documents_required"
	StatusDocumentsSubmitted   = "documents_submitted"
	StatusDocumentsUnderReview = "documents_under_review"
	StatusDocumentsApproved    = "documents_approved"
	StatusDocumentsRejected    = "documents_rejected"
	StatusApprovedStage1       = "approved_stage1"
	StatusRejectedStage1       = "rejected_stage1"
)

// Stage 2: university decision.
const (
	StatusSentToUniversity        = "sent_to_university"
	StatusUniversityUnderReview   = "university_under_review"
	StatusAdditionalDocsRequired  = "additional_documents_required"
	StatusAdditionalDocsSubmitted = "additional_documents_submitted"
	StatusUniversityApproved      = "university_approved"
	StatusUniversityRejected      = "university_rejected"
	StatusOfferLetterIssued       = "offer_letter_issued"
)

// Stage 3: visa processing.
const (
	StatusWaitingVisaPayment     = "waiting_visa_payment"
	StatusPaymentReceived        = "payment_received"
	StatusPaymentRejected        = "payment_rejected"
	StatusVisaDocsPreparation    = "visa_documents_preparation"
	StatusSubmittedToImmigration = "submitted_to_immigration"
	StatusVisaUnderProcess       = "visa_under_process"
	StatusAdditionalInfoRequired = "additional_info_required"
	StatusVisaIssued             = "visa_issued"
	StatusVisaRejected           = "visa_rejected"
)

// Stage 4: arrival.
const (
	StatusArrivalDatePlanning  = "arrival_date_planning"
	StatusArrivalDateConfirmed = "arrival_date_confirmed"
	StatusStudentArrived       = "student_arrived"
	StatusEnrollmentInProgress = "enrollment_in_progress"
	StatusEnrollmentConfirmed  = "enrollment_confirmed"
	StatusArrivalCancelled     = "arrival_cancelled"
)

// Stage 5: commission payout.
const (
	StatusCommissionPending    = "commission_pending"
	StatusCommissionCalculated = "commission_calculated"
	StatusInvoiceSubmitted     = "invoice_submitted"
	StatusCommissionPaid       = "commission_paid"
	StatusCommissionDisputed   = "commission_disputed"
	StatusDisputeResolved      = "dispute_resolved"
	StatusDisputeUnresolved    = "dispute_unresolved"
)

// DocumentType tags a document attached to an application.
type DocumentType string

const (
	DocPassport         DocumentType = "passport"
	DocTranscript       DocumentType = "transcript"
	DocDiploma          DocumentType = "diploma"
	DocEnglishTest      DocumentType = "english_test"
	DocOfferLetter      DocumentType = "offer_letter"
	DocPaymentRequest   DocumentType = "payment_request"
	DocPaymentReceipt   DocumentType = "payment_receipt"
	DocVisaScan         DocumentType = "visa_scan"
	DocEnrollmentLetter DocumentType = "enrollment_letter"
	DocInvoice          DocumentType = "invoice"
)

// Priority marks how urgently an application should move.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)
