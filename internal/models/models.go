package models

// Environment is a pipeline stage for an artifact. Stages form a fixed
// pipeline develop -> qa -> prod; a promotion moves an artifact exactly one
// stage forward.
type Environment string

const (
	EnvDevelop Environment = "develop"
	EnvQA      Environment = "qa"
	EnvProd    Environment = "prod"
)

// AllEnvironments lists stages in pipeline order. Readers that aggregate
// per-environment logs iterate in this order so output is deterministic.
var AllEnvironments = []Environment{EnvDevelop, EnvQA, EnvProd}

// SourceFor returns the stage immediately before target in the pipeline,
// and false when target is not a valid promotion target (develop has no
// source; unknown values are rejected).
func SourceFor(target Environment) (Environment, bool) {
	switch target {
	case EnvQA:
		return EnvDevelop, true
	case EnvProd:
		return EnvQA, true
	default:
		return "", false
	}
}

// Transition statuses. A hop goes PENDING_APPROVAL -> APPROVED at the target,
// with APPROVAL_RECORDED mirrored back at the source.
const (
	StatusPendingApproval  = "PENDING_APPROVAL"
	StatusApproved         = "APPROVED"
	StatusApprovalRecorded = "APPROVAL_RECORDED"
)

// TransitionRecord is one immutable entry of the promotion audit trail.
// Records are only ever appended to a log, never edited or deleted.
// Field names match the persisted logs.json layout.
type TransitionRecord struct {
	Timestamp   string      `json:"timestamp"`
	Model       string      `json:"model"`
	Version     string      `json:"version"`
	FromEnv     Environment `json:"from_env"`
	ToEnv       Environment `json:"to_env"`
	Status      string      `json:"status"`
	Note        string      `json:"note,omitempty"`
	RequestedBy string      `json:"requested_by,omitempty"`
	ApprovedBy  string      `json:"approved_by,omitempty"`
}

// UserConfig is the per-user notification routing record stored at
// {username}/config.json in the config bucket. Both fields are optional;
// an absent field disables that channel for the user.
type UserConfig struct {
	SlackWebhookURL string `json:"SLACK_WEBHOOK_URL,omitempty"`
	CreatorEmail    string `json:"CREATOR_EMAIL,omitempty"`
}
