// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package tui implements the interactive setup wizard using Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/janderssonse/debwiz/internal/application"
	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/logging"
	"github.com/janderssonse/debwiz/internal/notify"
	"github.com/janderssonse/debwiz/internal/tui/styles"
	"github.com/sirupsen/logrus"
)

// Layout constants for consistent spacing.
const (
	defaultWidth     = 80
	defaultHeight    = 24
	maxBarWidth      = 60
	summaryWrap      = 72
	chromeHeight     = 14 // header, title, buttons and footer around a viewport
	minViewportLines = 3
	borderPadding    = 6
)

// ErrIncompleteOptions is returned when Run is called without a package,
// controller or notifier.
var ErrIncompleteOptions = errors.New("wizard needs a package, a controller and a notifier")

// Options configures a wizard run.
type Options struct {
	Package    *domain.PackageInfo
	Controller *application.OperationController
	Events     *notify.Notifier
	// AltScreen runs the wizard in the alternate screen buffer.
	AltScreen bool
	// AcceptLicense skips the license page.
	AcceptLicense bool
}

// Page identifies a wizard page.
type Page int

// Wizard pages in display order.
const (
	PageWelcome Page = iota
	PageLicense
	PageProgress
	PageDone
)

func (p Page) String() string {
	switch p {
	case PageWelcome:
		return "Welcome"
	case PageLicense:
		return "License Agreement"
	case PageProgress:
		return "Progress"
	case PageDone:
		return "Done"
	default:
		return fmt.Sprintf("Page(%d)", int(p))
	}
}

type action int

const (
	actionInstall action = iota
	actionUninstall
	actionBack
	actionNext
	actionCancel
	actionFinish
	actionRestart
)

type button struct {
	label    string
	action   action
	disabled bool
}

// eventsMsg carries a batch of notifier events into the update loop.
type eventsMsg []notify.Event

// finishedMsg carries the terminal snapshot once the worker has been joined.
type finishedMsg struct {
	generation uint64
	snap       domain.Snapshot
}

// Wizard is the Bubble Tea model of the setup wizard.
//
//nolint:containedctx // the operation is started from Update and needs the program context
type Wizard struct {
	ctx        context.Context
	styles     *styles.Styles
	keys       KeyMap
	logger     *logrus.Entry
	info       *domain.PackageInfo
	controller *application.OperationController
	events     *notify.Notifier

	page        Page
	focus       int
	accepted    bool
	preaccepted bool
	summary     string
	notice      string
	quitting    bool

	snap       domain.Snapshot
	generation uint64

	spinner  spinner.Model
	bar      progress.Model
	viewport viewport.Model

	width  int
	height int
}

// New creates the wizard model for opts.
func New(ctx context.Context, opts Options) *Wizard {
	styleConfig := styles.New()

	wizard := &Wizard{
		ctx:         ctx,
		styles:      styleConfig,
		keys:        DefaultKeyMap(),
		logger:      logging.NewLogger("tui"),
		info:        opts.Package,
		controller:  opts.Controller,
		events:      opts.Events,
		preaccepted: opts.AcceptLicense,
		accepted:    opts.AcceptLicense,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleConfig.PrimaryText)),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		viewport:    viewport.New(defaultWidth-borderPadding, defaultHeight-chromeHeight),
		width:       defaultWidth,
		height:      defaultHeight,
	}

	wizard.summary = renderSummary(opts.Package)
	wizard.focus = wizard.firstEnabled()

	return wizard
}

// Run starts the wizard and blocks until the user leaves it.
func Run(ctx context.Context, opts Options) error {
	if opts.Package == nil || opts.Controller == nil || opts.Events == nil {
		return ErrIncompleteOptions
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	program := tea.NewProgram(New(ctx, opts), programOpts...)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI application failed: %w", err)
	}

	return nil
}

// renderSummary renders the package description as markdown.
func renderSummary(info *domain.PackageInfo) string {
	markdown := fmt.Sprintf("**Version:** %s\n\n%s\n", info.Version, info.Description)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(summaryWrap),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return rendered
}

// Init implements tea.Model.
func (w *Wizard) Init() tea.Cmd {
	return nil
}

// Page returns the visible page.
func (w *Wizard) Page() Page {
	return w.page
}

// Update implements tea.Model.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.resize(msg.Width, msg.Height)

		return w, nil

	case eventsMsg:
		return w, w.handleEvents(msg)

	case finishedMsg:
		if msg.generation == w.generation {
			w.finish(msg.snap)
		}

		return w, nil

	case spinner.TickMsg:
		if w.page != PageProgress {
			return w, nil
		}

		var cmd tea.Cmd

		w.spinner, cmd = w.spinner.Update(msg)

		return w, cmd

	case tea.KeyMsg:
		return w, w.handleKey(msg)
	}

	return w, nil
}

func (w *Wizard) resize(width, height int) {
	w.width = width
	w.height = height

	w.bar.Width = min(maxBarWidth, max(width-borderPadding, minViewportLines))
	w.viewport.Width = max(width-borderPadding, minViewportLines)
	w.viewport.Height = max(height-chromeHeight, minViewportLines)
}

func (w *Wizard) handleKey(msg tea.KeyMsg) tea.Cmd {
	w.notice = ""

	switch {
	case key.Matches(msg, w.keys.Quit):
		return w.quit()
	case key.Matches(msg, w.keys.Activate):
		buttons := w.buttons()
		if w.focus < 0 || w.focus >= len(buttons) || buttons[w.focus].disabled {
			return nil
		}

		return w.activate(buttons[w.focus].action)
	case key.Matches(msg, w.keys.Next):
		w.moveFocus(1)
	case key.Matches(msg, w.keys.Prev):
		w.moveFocus(-1)
	case key.Matches(msg, w.keys.Back):
		if w.page == PageLicense {
			return w.activate(actionBack)
		}
	case key.Matches(msg, w.keys.Toggle):
		if w.page == PageLicense {
			w.accepted = !w.accepted
			w.focus = w.indexOf(actionNext)
		}
	case key.Matches(msg, w.keys.scrolls()...):
		if w.page == PageLicense || w.page == PageDone {
			var cmd tea.Cmd

			w.viewport, cmd = w.viewport.Update(msg)

			return cmd
		}
	}

	return nil
}

// quit leaves the wizard unless the package manager is still running.
func (w *Wizard) quit() tea.Cmd {
	if err := w.controller.Cancel(); err != nil {
		w.notice = "The package manager is running and cannot be interrupted."

		return nil
	}

	w.quitting = true

	return tea.Quit
}

func (w *Wizard) activate(act action) tea.Cmd {
	switch act {
	case actionInstall:
		if w.info.HasLicense() && !w.preaccepted {
			w.showLicense()

			return nil
		}

		return w.start(w.info.InstallRequest())
	case actionUninstall:
		return w.start(w.info.UninstallRequest())
	case actionNext:
		return w.start(w.info.InstallRequest())
	case actionBack:
		w.setPage(PageWelcome)
	case actionRestart:
		if err := w.controller.Acknowledge(); err != nil {
			w.notice = err.Error()

			return nil
		}

		w.setPage(PageWelcome)
	case actionCancel, actionFinish:
		return w.quit()
	}

	return nil
}

func (w *Wizard) showLicense() {
	w.viewport.SetContent(w.info.License)
	w.viewport.GotoTop()
	w.setPage(PageLicense)
	w.focus = w.indexOf(actionNext)
}

func (w *Wizard) setPage(page Page) {
	w.page = page
	w.focus = w.firstEnabled()
}

// start launches an operation and subscribes to its notifications.
func (w *Wizard) start(req domain.OperationRequest) tea.Cmd {
	if err := w.controller.Start(w.ctx, req); err != nil {
		w.logger.WithError(err).Warn("Operation not started")
		w.notice = err.Error()

		return nil
	}

	w.snap = w.controller.Snapshot()
	w.generation = w.snap.Generation
	w.setPage(PageProgress)

	return tea.Batch(w.waitForEvents(), w.spinner.Tick)
}

// waitForEvents blocks on the notifier outside the update loop.
func (w *Wizard) waitForEvents() tea.Cmd {
	events := w.events
	ctx := w.ctx

	return func() tea.Msg {
		batch, err := events.Next(ctx)
		if err != nil {
			return nil
		}

		return eventsMsg(batch)
	}
}

// handleEvents applies a notifier batch. Events of other generations are stale
// and dropped. The subscription ends with the Finished event.
func (w *Wizard) handleEvents(batch eventsMsg) tea.Cmd {
	for _, event := range batch {
		if event.Generation != w.generation {
			continue
		}

		if event.Kind == notify.KindFinished {
			return w.joinWorker(event.Generation)
		}

		w.snap = w.controller.Snapshot()
	}

	return w.waitForEvents()
}

// joinWorker waits for the finished worker outside the update loop.
func (w *Wizard) joinWorker(generation uint64) tea.Cmd {
	controller := w.controller

	return func() tea.Msg {
		controller.Wait()

		return finishedMsg{generation: generation, snap: controller.Snapshot()}
	}
}

func (w *Wizard) finish(snap domain.Snapshot) {
	w.snap = snap

	if snap.State == domain.StateFailed {
		w.viewport.SetContent(snap.Output)
		w.viewport.GotoBottom()
	}

	w.setPage(PageDone)
}

// buttons returns the buttons of the visible page.
func (w *Wizard) buttons() []button {
	switch w.page {
	case PageWelcome:
		label := "Install"
		if w.info.Installed {
			label = "Reinstall"
		}

		buttons := []button{{label: label, action: actionInstall}}
		if w.info.Installed {
			buttons = append(buttons, button{label: "Uninstall", action: actionUninstall})
		}

		return append(buttons, button{label: "Cancel", action: actionCancel})
	case PageLicense:
		return []button{
			{label: "Back", action: actionBack},
			{label: "Next", action: actionNext, disabled: !w.accepted},
			{label: "Cancel", action: actionCancel},
		}
	case PageDone:
		buttons := []button{{label: "Finish", action: actionFinish}}
		if w.snap.State == domain.StateFailed {
			buttons = append(buttons, button{label: "Start over", action: actionRestart})
		}

		return buttons
	default:
		return nil
	}
}

func (w *Wizard) indexOf(act action) int {
	for i, b := range w.buttons() {
		if b.action == act {
			return i
		}
	}

	return -1
}

func (w *Wizard) firstEnabled() int {
	for i, b := range w.buttons() {
		if !b.disabled {
			return i
		}
	}

	return -1
}

// moveFocus cycles through enabled buttons.
func (w *Wizard) moveFocus(step int) {
	buttons := w.buttons()
	if len(buttons) == 0 {
		return
	}

	focus := w.focus

	for range buttons {
		focus = (focus + step + len(buttons)) % len(buttons)
		if !buttons[focus].disabled {
			w.focus = focus

			return
		}
	}
}
