package bot

import (
	"strconv"

	"timetrack/internal/chart"
	"timetrack/internal/conversation"
	"timetrack/internal/core"
)

// Keyboard names the button layout a transport should show with a reply.
type Keyboard string

const (
	KeyboardNone           Keyboard = ""
	KeyboardMain           Keyboard = "main"
	KeyboardCategories     Keyboard = "categories"
	KeyboardQuickDurations Keyboard = "quick_durations"
	KeyboardReportDates    Keyboard = "report_dates"
)

// Main menu labels; each one behaves like the matching command.
const (
	MenuAdd    = "📊 Add activity"
	MenuReport = "📈 Day report"
	MenuToday  = "📅 Today"
	MenuStats  = "📊 Statistics"
	MenuWeek   = "📅 Week"
)

const quickCallbackPrefix = "quick_"

// Message is one inbound user action: typed text or a button callback.
type Message struct {
	UserID      core.UserID `json:"user_id"`
	DisplayName string      `json:"display_name,omitempty"`
	Text        string      `json:"text,omitempty"`
	Callback    string      `json:"callback,omitempty"`
}

// Button is a single choice; Callback is empty for buttons that send their label as text.
type Button struct {
	Label    string `json:"label"`
	Callback string `json:"callback,omitempty"`
}

type Reply struct {
	Text     string             `json:"text"`
	Keyboard Keyboard           `json:"keyboard,omitempty"`
	Buttons  []Button           `json:"buttons,omitempty"`
	Chart    *chart.Artifact    `json:"chart,omitempty"`
	Entry    *core.TimeEntry    `json:"entry,omitempty"`
	State    conversation.State `json:"state"`
}

// Buttons returns the choices of a layout.
func (k Keyboard) Buttons() []Button {
	switch k {
	case KeyboardMain:
		return labelButtons([]string{MenuAdd, MenuReport, MenuToday, MenuStats, MenuWeek})
	case KeyboardCategories:
		return labelButtons(core.CategoryLabels())
	case KeyboardQuickDurations:
		out := make([]Button, len(core.QuickDurations))
		for i, m := range core.QuickDurations {
			out[i] = Button{Label: core.HumanDuration(m), Callback: QuickCallback(m)}
		}
		return out
	case KeyboardReportDates:
		return labelButtons(core.ReportDateShortcuts)
	default:
		return nil
	}
}

// QuickCallback is the callback data of a preset duration button.
func QuickCallback(minutes int) string {
	return quickCallbackPrefix + strconv.Itoa(minutes)
}

func labelButtons(labels []string) []Button {
	out := make([]Button, len(labels))
	for i, l := range labels {
		out[i] = Button{Label: l}
	}
	return out
}
