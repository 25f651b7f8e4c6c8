package bot

import (
	"fmt"
	"strings"
	"time"

	"timetrack/internal/conversation"
	"timetrack/internal/core"
)

const (
	textStoreFailure = "❌ Error! Please try again."
	textChartFailed  = "⚠️ Chart unavailable"
)

func greeting(name string) string {
	if name == "" {
		name = "there"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🕒 Hi, %s!\n\n", name)
	b.WriteString("I keep track of where your time goes.\n\n")
	b.WriteString("What I can do:\n")
	b.WriteString("• 📊 Log activities\n")
	b.WriteString("• 📈 Build daily reports with charts\n")
	b.WriteString("• 📅 Show weekly and monthly statistics\n\n")
	b.WriteString("Categories:\n")
	b.WriteString(strings.Join(core.CategoryLabels(), " | "))
	b.WriteString("\n\nUse the buttons below 👇")
	return b.String()
}

func helpText() string {
	return "🤖 Use the buttons or commands:\n\n" +
		"/start - Get started\n" +
		"/add - Add an activity\n" +
		"/today - Today's activities\n" +
		"/report - Daily report with chart\n" +
		"/week - Weekly statistics\n" +
		"/stats - Statistics for 30 days\n" +
		"/month - Statistics for this month"
}

func promptText(q conversation.Question) string {
	switch q {
	case conversation.AskCategory:
		return "📊 Choose an activity:"
	case conversation.AskDuration:
		return "⏱️ How long did it take?\n\nPick a preset or type it: 90, 1:30 or 1.5"
	case conversation.AskReportDate:
		return "📅 Which day? Type a date (dd.mm.yyyy) or pick one below."
	default:
		return ""
	}
}

func invalidText(q conversation.Question, kind core.ParseErrorKind) string {
	switch {
	case q == conversation.AskCategory:
		return "Please choose an activity from the buttons:"
	case q == conversation.AskDuration:
		return "❌ Invalid duration! Enter 1 to 1440 minutes:"
	case q == conversation.AskReportDate && kind == core.FutureDate:
		return "❌ The date cannot be in the future!"
	case q == conversation.AskReportDate:
		return "❌ Invalid date! Use dd.mm.yyyy or today, yesterday, day before yesterday:"
	default:
		return helpText()
	}
}

func entryAdded(e core.TimeEntry, loc *time.Location) string {
	return fmt.Sprintf("✅ Added!\n\nActivity: %s\nTime: %s\nWhen: %s",
		e.Category.Name(), core.FullDuration(e.DurationMinutes), e.OccurredAt.In(loc).Format("15:04"))
}

func breakdownLines(b *strings.Builder, shares []core.CategoryShare) {
	for _, s := range shares {
		fmt.Fprintf(b, "%s: %s (%s)\n", s.Category.Label(), core.HumanDuration(s.Minutes), core.FormatPercent(s.Percent))
	}
}

func dailyText(r core.DailyReport) string {
	if r.IsEmpty() {
		return fmt.Sprintf("📭 No data for %s\n\nNo activities were added on this day.", r.Date)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Report for %s\n\n", r.Date)
	breakdownLines(&b, r.Breakdown())
	fmt.Fprintf(&b, "\n⏱️ Total: %s", core.FullDuration(r.TotalMinutes))
	return b.String()
}

func todayText(entries []core.TimeEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return "📭 No entries for today yet.\n\nUse /add to log an activity."
	}
	var b strings.Builder
	b.WriteString("📊 Today's activities:\n\n")
	total := 0
	for _, e := range entries {
		fmt.Fprintf(&b, "• %s: %s (at %s)\n",
			e.Category.Label(), core.HumanDuration(e.DurationMinutes), e.OccurredAt.In(loc).Format("15:04"))
		total += e.DurationMinutes
	}
	fmt.Fprintf(&b, "\n⏱️ Total: %s", core.FullDuration(total))
	return b.String()
}

func weekText(r core.RangeReport) string {
	var b strings.Builder
	b.WriteString("📅 Weekly statistics\n\n")
	for _, d := range r.Days {
		label := d.Date.Format("Mon 02.01")
		if d.TotalMinutes == 0 {
			fmt.Fprintf(&b, "%s: no data\n", label)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", label, core.FullDuration(d.TotalMinutes))
	}
	fmt.Fprintf(&b, "\n📊 Average per day: %s", core.FullDuration(r.AverageMinutesPerDay))
	fmt.Fprintf(&b, "\n⏱️ Week total: %s", core.FullDuration(r.TotalMinutes))
	return b.String()
}

// summaryText renders a ranked range breakdown under title.
func summaryText(title, totalLabel string, r core.RangeReport) string {
	if r.IsEmpty() {
		return fmt.Sprintf("📭 No data for %s - %s", r.Start.Format("02.01"), r.End)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📈 %s\n\n", title)
	breakdownLines(&b, r.Breakdown())
	fmt.Fprintf(&b, "\n⏱️ %s: %s", totalLabel, core.FullDuration(r.TotalMinutes))
	fmt.Fprintf(&b, "\n📅 Period: %s - %s", r.Start.Format("02.01"), r.End)
	return b.String()
}
