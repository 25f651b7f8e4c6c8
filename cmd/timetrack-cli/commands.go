package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"timetrack/internal/backend"
	"timetrack/internal/bot"
	"timetrack/internal/chart"
	"timetrack/internal/config"
	"timetrack/internal/conversation"
	"timetrack/internal/core"
	applog "timetrack/internal/log"
	"timetrack/internal/services"
	"timetrack/internal/storage"
)

// Context is shared by every command.
type Context struct {
	Config  *config.Config
	Logger  *applog.Logger
	User    int64
	Name    string
	Out     io.Writer
	Command string
}

// session is a bot over the configured backend, driven one message at a time.
type session struct {
	bot     *bot.Bot
	user    core.UserID
	name    string
	cleanup backend.CleanupFunc
}

func (c *Context) openSession(ctx context.Context, clock func() time.Time) (*session, error) {
	if c.User <= 0 {
		return nil, core.ErrMissingUser
	}
	backendCfg, err := backend.FromAppConfig(c.Config)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(c.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	b := bot.New(bot.Options{
		Users:    result.Store,
		Entries:  result.Entries,
		Reports:  services.NewReportService(result.Store, c.Logger),
		Machine:  conversation.NewMachine(c.Config.SessionIdleTimeout),
		Charts:   chart.NewSVGRenderer(),
		Clock:    clock,
		Location: c.Config.Location(),
		Logger:   c.Logger,
	})
	return &session{bot: b, user: core.UserID(c.User), name: c.Name, cleanup: result.Cleanup}, nil
}

func (s *session) send(ctx context.Context, text string) (bot.Reply, error) {
	return s.bot.HandleMessage(ctx, bot.Message{UserID: s.user, DisplayName: s.name, Text: text})
}

func (s *session) close() {
	if s.cleanup != nil {
		_ = s.cleanup()
	}
}

type MigrateCmd struct{}

func (m *MigrateCmd) Run(c *Context) error {
	repo, err := storage.NewSQLiteRepository(c.Config.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	fmt.Fprintf(c.Out, "Schema up to date: %s\n", c.Config.SQLiteDBPath)
	return nil
}

type AddCmd struct {
	Category string `required:"" short:"c" help:"work, sleep, rest, study or entertainment."`
	Duration string `required:"" short:"d" help:"Minutes (45), H:M (1:30) or decimal hours (1.5)."`
	At       string `help:"When it happened, as \"2006-01-02 15:04\" in the configured timezone. Defaults to now."`
}

const atLayout = "2006-01-02 15:04"

func (a *AddCmd) Run(c *Context) error {
	category, err := core.ParseCategory(strings.ToLower(strings.TrimSpace(a.Category)))
	if err != nil {
		return fmt.Errorf("%w: %q", err, a.Category)
	}

	var clock func() time.Time
	if a.At != "" {
		at, err := time.ParseInLocation(atLayout, strings.TrimSpace(a.At), c.Config.Location())
		if err != nil {
			return fmt.Errorf("invalid --at %q: want %s", a.At, atLayout)
		}
		clock = func() time.Time { return at }
	}

	ctx := context.Background()
	s, err := c.openSession(ctx, clock)
	if err != nil {
		return err
	}
	defer s.close()

	var reply bot.Reply
	for _, text := range []string{"/add", category.Label(), a.Duration} {
		if reply, err = s.send(ctx, text); err != nil {
			return err
		}
	}
	if reply.Entry == nil {
		return errors.New(reply.Text)
	}
	fmt.Fprintln(c.Out, reply.Text)
	return nil
}

type ReportDayCmd struct {
	Date  string `default:"today" help:"today, yesterday or dd.mm.yyyy."`
	Chart string `help:"Write the chart SVG to this file." type:"path"`
}

func (r *ReportDayCmd) Run(c *Context) error {
	ctx := context.Background()
	s, err := c.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.send(ctx, "/report"); err != nil {
		return err
	}
	reply, err := s.send(ctx, r.Date)
	if err != nil {
		return err
	}
	if reply.State.Stage == conversation.AwaitingReportDate {
		return errors.New(reply.Text)
	}
	return printReply(c.Out, reply, r.Chart)
}

type ReportPeriodCmd struct {
	Chart string `help:"Write the chart SVG to this file." type:"path"`
}

func (r *ReportPeriodCmd) Run(c *Context) error {
	name := c.Command[strings.LastIndex(c.Command, " ")+1:]

	ctx := context.Background()
	s, err := c.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.close()

	reply, err := s.send(ctx, "/"+name)
	if err != nil {
		return err
	}
	return printReply(c.Out, reply, r.Chart)
}

func printReply(out io.Writer, reply bot.Reply, chartPath string) error {
	fmt.Fprintln(out, reply.Text)
	if chartPath == "" || reply.Chart == nil {
		return nil
	}
	if err := os.WriteFile(chartPath, reply.Chart.Data, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	fmt.Fprintf(out, "Chart written to %s\n", chartPath)
	return nil
}

type SyncRetryCmd struct{}

func (SyncRetryCmd) Run(c *Context) error {
	repo, err := storage.NewSQLiteRepository(c.Config.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	n, err := repo.RetryFailedSyncs(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Requeued %d entries\n", n)
	return nil
}
