// Package bot turns chat messages into conversation transitions, store calls and
// rendered replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"timetrack/internal/cache"
	"timetrack/internal/chart"
	"timetrack/internal/conversation"
	"timetrack/internal/core"
	applog "timetrack/internal/log"
	"timetrack/internal/services"
	"timetrack/internal/store"
)

type (
	EntryCreator interface {
		CreateEntry(ctx context.Context, e core.TimeEntry) (string, error)
	}

	Reports interface {
		Daily(ctx context.Context, user core.UserID, date core.Date) (core.DailyReport, error)
		Period(ctx context.Context, user core.UserID, period string, today core.Date) (core.RangeReport, error)
		EntriesOn(ctx context.Context, user core.UserID, date core.Date) ([]core.TimeEntry, error)
	}
)

// Options wires a Bot. Charts may be nil; Clock defaults to time.Now and
// Location to UTC.
type Options struct {
	Users    store.UserRegistrar
	Entries  EntryCreator
	Reports  Reports
	Machine  *conversation.Machine
	Charts   chart.Renderer
	Clock    func() time.Time
	Location *time.Location
	Logger   *applog.Logger

	KnownUsersSize int
	KnownUsersTTL  time.Duration
}

type Bot struct {
	users    store.UserRegistrar
	entries  EntryCreator
	reports  Reports
	machine  *conversation.Machine
	charts   chart.Renderer
	clock    func() time.Time
	loc      *time.Location
	logger   *applog.Logger
	events   *applog.StructuredLogger
	known    *cache.LRUCache[core.UserID, struct{}]
	commands map[string]command
}

type command func(ctx context.Context, msg Message, now time.Time) (Reply, error)

func New(opts Options) *Bot {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.KnownUsersSize <= 0 {
		opts.KnownUsersSize = 1000
	}
	if opts.KnownUsersTTL <= 0 {
		opts.KnownUsersTTL = time.Hour
	}
	logger := opts.Logger.WithComponent(applog.ComponentBot)

	b := &Bot{
		users:   opts.Users,
		entries: opts.Entries,
		reports: opts.Reports,
		machine: opts.Machine,
		charts:  opts.Charts,
		clock:   opts.Clock,
		loc:     opts.Location,
		logger:  logger,
		events:  applog.NewStructuredLogger(logger),
		known:   cache.NewLRUCache[core.UserID, struct{}](opts.KnownUsersSize, opts.KnownUsersTTL),
	}

	b.commands = map[string]command{
		"/start":   b.cmdStart,
		"/help":    b.cmdHelp,
		"/add":     b.cmdAdd,
		MenuAdd:    b.cmdAdd,
		"/report":  b.cmdReport,
		MenuReport: b.cmdReport,
		"/today":   b.cmdToday,
		MenuToday:  b.cmdToday,
		"/week":    b.cmdWeek,
		MenuWeek:   b.cmdWeek,
		"/stats":   b.cmdStats,
		MenuStats:  b.cmdStats,
		"/month":   b.cmdMonth,
	}
	return b
}

// KnownUsers exposes the registration cache so it can be swept with the other caches.
func (b *Bot) KnownUsers() cache.Cleaner {
	return b.known
}

// HandleMessage processes one inbound message. A store failure yields both a
// user-facing reply and an error wrapping core.ErrStoreFailure.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) (Reply, error) {
	if msg.UserID == 0 {
		return Reply{}, core.ErrMissingUser
	}
	now := b.clock().In(b.loc)

	if msg.Callback != "" {
		return b.handleCallback(ctx, msg, now)
	}

	text := strings.TrimSpace(msg.Text)
	if cmd, ok := b.commands[commandName(text)]; ok {
		b.machine.Abandon(msg.UserID)
		return cmd(ctx, msg, now)
	}

	out := b.machine.Handle(msg.UserID, text, core.DateOf(now))
	return b.handleOutcome(ctx, msg, out, now)
}

// commandName strips arguments and a bot-name suffix ("/add@timebot").
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	name, _, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}

func (b *Bot) handleCallback(ctx context.Context, msg Message, now time.Time) (Reply, error) {
	raw, ok := strings.CutPrefix(msg.Callback, quickCallbackPrefix)
	if !ok {
		b.logger.WarnContext(ctx, "Unknown callback", "callback", msg.Callback, applog.FieldUserID, int64(msg.UserID))
		return b.reply(msg.UserID, helpText(), KeyboardMain), nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		minutes = 0
	}
	out := b.machine.HandleQuickDuration(msg.UserID, minutes)
	return b.handleOutcome(ctx, msg, out, now)
}

func (b *Bot) handleOutcome(ctx context.Context, msg Message, out conversation.Outcome, now time.Time) (Reply, error) {
	switch out.Kind {
	case conversation.Prompt:
		return b.reply(msg.UserID, promptText(out.Question), keyboardFor(out.Question)), nil

	case conversation.Invalid:
		kind, _ := core.ParseErrorKindOf(out.Err)
		return b.reply(msg.UserID, invalidText(out.Question, kind), keyboardFor(out.Question)), nil

	case conversation.EntryReady:
		return b.saveEntry(ctx, msg, *out.Entry, now)

	case conversation.ReportReady:
		return b.dailyReport(ctx, msg.UserID, out.ReportDate)

	default:
		return b.reply(msg.UserID, helpText(), KeyboardMain), nil
	}
}

func keyboardFor(q conversation.Question) Keyboard {
	switch q {
	case conversation.AskCategory:
		return KeyboardCategories
	case conversation.AskDuration:
		return KeyboardQuickDurations
	case conversation.AskReportDate:
		return KeyboardReportDates
	default:
		return KeyboardMain
	}
}

func (b *Bot) reply(user core.UserID, text string, kb Keyboard) Reply {
	return Reply{
		Text:     text,
		Keyboard: kb,
		Buttons:  kb.Buttons(),
		State:    b.machine.State(user),
	}
}

func (b *Bot) failure(ctx context.Context, user core.UserID, op string, err error) (Reply, error) {
	if !errors.Is(err, core.ErrStoreFailure) {
		err = fmt.Errorf("%w: %w", core.ErrStoreFailure, err)
	}
	b.events.LogError(ctx, "Request failed", err, applog.ComponentBot, op, applog.NewFields().WithUser(user))
	return b.reply(user, textStoreFailure, KeyboardMain), err
}

// ensureUser registers the user once per cache lifetime.
func (b *Bot) ensureUser(ctx context.Context, msg Message) error {
	if _, ok := b.known.Get(msg.UserID); ok {
		return nil
	}
	if err := b.users.CreateUser(ctx, msg.UserID, msg.DisplayName); err != nil {
		return err
	}
	b.known.Set(msg.UserID, struct{}{})
	return nil
}

func (b *Bot) saveEntry(ctx context.Context, msg Message, draft core.EntryDraft, now time.Time) (Reply, error) {
	if err := b.ensureUser(ctx, msg); err != nil {
		return b.failure(ctx, msg.UserID, applog.OpCreate, err)
	}

	entry := draft.Entry(msg.UserID, now)
	ref, err := b.entries.CreateEntry(ctx, entry)
	if err != nil {
		return b.failure(ctx, msg.UserID, applog.OpAppend, err)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		entry.ID = id
	}

	r := b.reply(msg.UserID, entryAdded(entry, b.loc), KeyboardMain)
	r.Entry = &entry
	return r, nil
}

func (b *Bot) dailyReport(ctx context.Context, user core.UserID, date core.Date) (Reply, error) {
	report, err := b.reports.Daily(ctx, user, date)
	if err != nil {
		return b.failure(ctx, user, applog.OpReport, err)
	}

	r := b.reply(user, dailyText(report), KeyboardMain)
	if report.IsEmpty() || b.charts == nil {
		return r, nil
	}
	art, err := b.charts.RenderDaily(ctx, report)
	b.attachChart(ctx, &r, art, err, user)
	return r, nil
}

// attachChart adds the artifact, or a note when rendering failed.
func (b *Bot) attachChart(ctx context.Context, r *Reply, art chart.Artifact, err error, user core.UserID) {
	if err != nil {
		b.events.LogError(ctx, "Chart rendering failed", fmt.Errorf("%w: %w", core.ErrRenderFailure, err),
			applog.ComponentChart, applog.OpRender, applog.NewFields().WithUser(user))
		r.Text += "\n\n" + textChartFailed
		return
	}
	r.Chart = &art
}

func (b *Bot) cmdStart(ctx context.Context, msg Message, _ time.Time) (Reply, error) {
	if err := b.users.CreateUser(ctx, msg.UserID, msg.DisplayName); err != nil {
		return b.failure(ctx, msg.UserID, applog.OpCreate, err)
	}
	b.known.Set(msg.UserID, struct{}{})
	b.logger.InfoContext(ctx, "User started", applog.FieldUserID, int64(msg.UserID))
	return b.reply(msg.UserID, greeting(msg.DisplayName), KeyboardMain), nil
}

func (b *Bot) cmdHelp(_ context.Context, msg Message, _ time.Time) (Reply, error) {
	return b.reply(msg.UserID, helpText(), KeyboardMain), nil
}

func (b *Bot) cmdAdd(ctx context.Context, msg Message, now time.Time) (Reply, error) {
	return b.handleOutcome(ctx, msg, b.machine.StartEntry(msg.UserID), now)
}

func (b *Bot) cmdReport(ctx context.Context, msg Message, now time.Time) (Reply, error) {
	return b.handleOutcome(ctx, msg, b.machine.StartReport(msg.UserID), now)
}

func (b *Bot) cmdToday(ctx context.Context, msg Message, now time.Time) (Reply, error) {
	entries, err := b.reports.EntriesOn(ctx, msg.UserID, core.DateOf(now))
	if err != nil {
		return b.failure(ctx, msg.UserID, applog.OpRead, err)
	}
	return b.reply(msg.UserID, todayText(entries, b.loc), KeyboardMain), nil
}

func (b *Bot) cmdWeek(ctx context.Context, msg Message, now time.Time) (Reply, error) {
	report, err := b.reports.Period(ctx, msg.UserID, services.PeriodWeek, core.DateOf(now))
	if err != nil {
		return b.failure(ctx, msg.UserID, applog.OpReport, err)
	}
	r := b.reply(msg.UserID, weekText(report), KeyboardMain)
	if !report.IsEmpty() && b.charts != nil {
		art, err := b.charts.RenderRange(ctx, report)
		b.attachChart(ctx, &r, art, err, msg.UserID)
	}
	return r, nil
}

func (b *Bot) cmdStats(ctx context.Context, msg Message, now time.Time) (Reply, error) {
	report, err := b.reports.Period(ctx, msg.UserID, services.PeriodStats, core.DateOf(now))
	if err != nil {
		return b.failure(ctx, msg.UserID, applog.OpReport, err)
	}
	return b.reply(msg.UserID, summaryText("Statistics for 30 days", "Total for 30 days", report), KeyboardMain), nil
}

func (b *Bot) cmdMonth(ctx context.Context, msg Message, now time.Time) (Reply, error) {
	report, err := b.reports.Period(ctx, msg.UserID, services.PeriodMonth, core.DateOf(now))
	if err != nil {
		return b.failure(ctx, msg.UserID, applog.OpReport, err)
	}
	title := "Statistics for " + now.Format("January 2006")
	return b.reply(msg.UserID, summaryText(title, "Total this month", report), KeyboardMain), nil
}
