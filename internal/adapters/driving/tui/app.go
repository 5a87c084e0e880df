package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/assetsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/assetsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/assetsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
)

const (
	defaultBarWidth = 40
	maxBarWidth     = 80
)

// App is the sync progress view following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context the sync runs under; cancel aborts it.
	ctx    context.Context
	cancel context.CancelFunc

	// regions lists the regions to sync. Empty means every configured region.
	regions []string
	opts    driving.SyncOptions

	styles  *styles.Styles
	keys    *keymap.KeyMap
	spinner spinner.Model
	bar     progress.Model

	// send delivers messages from the sync goroutine. Nil outside a program.
	send func(tea.Msg)

	// current is the latest progress event.
	current domain.ProgressEvent

	// finished collects per-region outcomes as they arrive.
	finished []messages.RegionFinished

	summaries []*domain.RunSummary
	err       error
	done      bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a progress view that syncs the given regions.
func NewApp(ports *Ports, regions []string, opts driving.SyncOptions) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		ports:   ports,
		ctx:     ctx,
		cancel:  cancel,
		regions: regions,
		opts:    opts,
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(s.Subtitle),
		),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(defaultBarWidth),
		),
	}, nil
}

// WithContext derives the sync context from ctx.
func (a *App) WithContext(ctx context.Context) *App {
	a.cancel()
	a.ctx, a.cancel = context.WithCancel(ctx)
	return a
}

// Init implements tea.Model.
// It starts the spinner and the sync.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.startSync)
}

func (a *App) startSync() tea.Msg {
	if len(a.regions) == 0 {
		summaries, err := a.ports.Sync.SyncAll(a.ctx, a.opts)
		return messages.SyncFinished{Summaries: summaries, Err: err}
	}

	var summaries []*domain.RunSummary
	var errs []error
	for _, region := range a.regions {
		summary, err := a.ports.Sync.Sync(a.ctx, region, a.opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("region %s: %w", region, err))
		}
		if summary != nil {
			summaries = append(summaries, summary)
		}
		if a.send != nil {
			a.send(messages.RegionFinished{Summary: summary, Err: err})
		}
	}
	return messages.SyncFinished{Summaries: summaries, Err: errors.Join(errs...)}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keys.Quit) && !a.done {
			a.cancel()
			a.err = ErrInterrupted
			a.done = true
			return a, tea.Quit
		}
		return a, nil

	case tea.WindowSizeMsg:
		w := msg.Width - 4
		if w > maxBarWidth {
			w = maxBarWidth
		}
		if w > 0 {
			a.bar.Width = w
		}
		return a, nil

	case messages.ProgressUpdated:
		a.current = msg.Event
		return a, nil

	case messages.RegionFinished:
		a.finished = append(a.finished, msg)
		return a, nil

	case messages.SyncFinished:
		a.summaries = msg.Summaries
		if a.err == nil {
			a.err = msg.Err
		}
		a.done = true
		a.cancel()
		return a, tea.Quit

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	for _, f := range a.finished {
		b.WriteString(a.regionLine(f))
		b.WriteString("\n")
	}

	if a.done {
		if errors.Is(a.err, ErrInterrupted) {
			b.WriteString(a.styles.Warning.Render("sync cancelled"))
			b.WriteString("\n")
		}
		return b.String()
	}

	ev := a.current
	if ev.Region == "" {
		b.WriteString(fmt.Sprintf("%s %s\n", a.spinner.View(), a.styles.Muted.Render("starting")))
	} else {
		b.WriteString(fmt.Sprintf("%s %s %s %s\n",
			a.spinner.View(),
			a.styles.Subtitle.Render(ev.Region),
			a.styles.Normal.Render(string(ev.Stage)),
			a.styles.Muted.Render(fmt.Sprintf("%d/%d", ev.Done, ev.Total)),
		))
		b.WriteString(a.bar.ViewAs(fraction(ev)))
		b.WriteString("\n")
		if ev.Item != "" {
			b.WriteString(a.styles.Muted.Render(ev.Item))
			b.WriteString("\n")
		}
	}

	b.WriteString(a.styles.Help.Render(a.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (a *App) regionLine(f messages.RegionFinished) string {
	if f.Summary == nil {
		return fmt.Sprintf("%s %v", a.styles.Outcome(true, false), f.Err)
	}
	s := f.Summary
	partial := s.FetchCount(domain.FetchStatusFailed) > 0 || s.GroupCount(domain.GroupStatusDecodeFailed) > 0
	return fmt.Sprintf("%s %s  %d fetched, %d artifacts, %s",
		a.styles.Outcome(f.Err != nil, partial),
		a.styles.Subtitle.Render(s.Region),
		s.FetchCount(domain.FetchStatusFetched),
		s.ArtifactCount(),
		humanize.Bytes(uint64(s.BytesFetched())),
	)
}

func (a *App) helpLine() string {
	parts := make([]string, 0, len(a.keys.ShortHelp()))
	for _, k := range a.keys.ShortHelp() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func fraction(ev domain.ProgressEvent) float64 {
	if ev.Stage == domain.StageDone {
		return 1
	}
	if ev.Total <= 0 {
		return 0
	}
	f := float64(ev.Done) / float64(ev.Total)
	if f > 1 {
		return 1
	}
	return f
}

// Summaries returns the run summaries collected so far.
func (a *App) Summaries() []*domain.RunSummary {
	return a.summaries
}

// Err returns the error the sync finished with, or ErrInterrupted.
func (a *App) Err() error {
	return a.err
}

// Done reports whether the sync has finished or was cancelled.
func (a *App) Done() bool {
	return a.done
}

// Run starts the progress view and blocks until the sync finishes or the
// user cancels it.
func (a *App) Run(opts ...tea.ProgramOption) ([]*domain.RunSummary, error) {
	p := tea.NewProgram(a, opts...)
	a.send = p.Send

	unsubscribe := a.ports.Sync.Subscribe(func(ev domain.ProgressEvent) {
		p.Send(messages.ProgressUpdated{Event: ev})
	})
	defer unsubscribe()
	defer a.cancel()

	if _, err := p.Run(); err != nil {
		return a.summaries, fmt.Errorf("running tui: %w", err)
	}
	return a.summaries, a.err
}
