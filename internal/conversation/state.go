package conversation

import (
	"fmt"

	"timetrack/internal/core"
)

// Stage is the position of a user inside a conversation flow.
type Stage int

const (
	Idle Stage = iota
	AwaitingCategory
	AwaitingDuration
	AwaitingReportDate
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingCategory:
		return "awaiting_category"
	case AwaitingDuration:
		return "awaiting_duration"
	case AwaitingReportDate:
		return "awaiting_report_date"
	default:
		return "unknown"
	}
}

var stagesByName = map[string]Stage{
	Idle.String():               Idle,
	AwaitingCategory.String():   AwaitingCategory,
	AwaitingDuration.String():   AwaitingDuration,
	AwaitingReportDate.String(): AwaitingReportDate,
}

// MarshalText renders the stage name in JSON replies.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	stage, ok := stagesByName[string(b)]
	if !ok {
		return fmt.Errorf("unknown conversation stage %q", string(b))
	}
	*s = stage
	return nil
}

// State is a snapshot of one user's conversation.
// PendingCategory is set only while Stage is AwaitingDuration.
type State struct {
	UserID          core.UserID   `json:"user_id"`
	Stage           Stage         `json:"stage"`
	PendingCategory core.Category `json:"pending_category,omitempty"`
}

// OutcomeKind tells the caller what a transition produced.
type OutcomeKind int

const (
	// Prompt asks the next question of the flow.
	Prompt OutcomeKind = iota + 1
	// Invalid rejects the reply; the stage is unchanged and the question should be repeated.
	Invalid
	// EntryReady carries a finalized draft; the user is back to Idle.
	EntryReady
	// ReportReady carries a finalized report date; the user is back to Idle.
	ReportReady
	// NotInFlow means the user is Idle and the text was not part of any flow.
	NotInFlow
)

func (k OutcomeKind) String() string {
	switch k {
	case Prompt:
		return "prompt"
	case Invalid:
		return "invalid"
	case EntryReady:
		return "entry_ready"
	case ReportReady:
		return "report_ready"
	case NotInFlow:
		return "not_in_flow"
	default:
		return "unknown"
	}
}

// Question names what the user is being asked for.
type Question int

const (
	NoQuestion Question = iota
	AskCategory
	AskDuration
	AskReportDate
)

type Outcome struct {
	Kind       OutcomeKind
	Question   Question
	Err        error
	Entry      *core.EntryDraft
	ReportDate core.Date
	State      State
}
