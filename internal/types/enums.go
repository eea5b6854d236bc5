package types

// Project Status values
const (
	ProjectDraft      = "draft"
	ProjectOpen       = "open"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
	ProjectCancelled  = "cancelled"
)

// Project Category values
const (
	CategoryComposition = "composition"
	CategoryArrangement = "arrangement"
	CategoryMixing      = "mixing"
	CategoryMastering   = "mastering"
	CategoryRecording   = "recording"
	CategoryLyrics      = "lyrics"
)

// Proposal Status values
const (
	ProposalPending  = "pending"
	ProposalAccepted = "accepted"
	ProposalRejected = "rejected"
)

// Escrow Transaction Status values
const (
	EscrowHeld     = "held"
	EscrowReleased = "released"
	EscrowRefunded = "refunded"
)

// Withdrawal Status values
const (
	WithdrawalPending    = "pending"
	WithdrawalProcessing = "processing"
	WithdrawalCompleted  = "completed"
	WithdrawalFailed     = "failed"
)

// Withdrawal Method values
const (
	MethodBank   = "bank"
	MethodPaypal = "paypal"
)

// User Roles
const (
	RoleClient  = "client"
	RoleCreator = "creator"
)

// Valid status values for validation
var ValidProjectStatuses = []string{
	ProjectDraft, ProjectOpen, ProjectInProgress,
	ProjectCompleted, ProjectCancelled,
}

var ValidCategories = []string{
	CategoryComposition, CategoryArrangement, CategoryMixing,
	CategoryMastering, CategoryRecording, CategoryLyrics,
}

var ValidWithdrawalMethods = []string{
	MethodBank, MethodPaypal,
}

var ValidRoles = []string{
	RoleClient, RoleCreator,
}

func IsValidProjectStatus(status string) bool {
	for _, s := range ValidProjectStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

func IsValidWithdrawalMethod(method string) bool {
	for _, m := range ValidWithdrawalMethods {
		if m == method {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
