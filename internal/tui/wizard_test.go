// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/janderssonse/debwiz/internal/adapters/ubuntu"
	"github.com/janderssonse/debwiz/internal/application"
	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/notify"
	"github.com/janderssonse/debwiz/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	keyBack  = tea.KeyMsg{Type: tea.KeyEsc}
)

type fixture struct {
	wizard   *Wizard
	streamer *testutil.ScriptedStreamer
	events   *notify.Notifier
	ctrl     *application.OperationController
}

func newFixture(t *testing.T, info *domain.PackageInfo, streamer *testutil.ScriptedStreamer, accept bool) *fixture {
	t.Helper()

	events := notify.New()
	ctrl := application.NewOperationController(streamer, ubuntu.NewAptCommandBuilder(""), events)

	wizard := New(context.Background(), Options{
		Package:       info,
		Controller:    ctrl,
		Events:        events,
		AcceptLicense: accept,
	})
	wizard.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	return &fixture{wizard: wizard, streamer: streamer, events: events, ctrl: ctrl}
}

func (f *fixture) press(msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd

	for _, msg := range msgs {
		_, cmd = f.wizard.Update(msg)
	}

	return cmd
}

// settle waits for the worker, feeds every queued event to the wizard and
// delivers the message of the command it returns.
func (f *fixture) settle() {
	f.ctrl.Wait()

	_, cmd := f.wizard.Update(eventsMsg(f.events.Drain()))
	if cmd == nil {
		return
	}

	if msg, ok := cmd().(finishedMsg); ok {
		f.wizard.Update(msg)
	}
}

func labels(buttons []button) []string {
	result := make([]string, 0, len(buttons))
	for _, b := range buttons {
		result = append(result, b.label)
	}

	return result
}

func TestWizard_WelcomeButtons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		installed bool
		want      []string
	}{
		{name: "not installed", installed: false, want: []string{"Install", "Cancel"}},
		{name: "installed", installed: true, want: []string{"Reinstall", "Uninstall", "Cancel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := testutil.CreateTestPackageInfo("hello")
			info.Installed = tt.installed

			f := newFixture(t, info, &testutil.ScriptedStreamer{}, false)

			assert.Equal(t, PageWelcome, f.wizard.Page())
			assert.Equal(t, tt.want, labels(f.wizard.buttons()))
			assert.Contains(t, f.wizard.View(), "hello")
		})
	}
}

func TestWizard_WelcomeShowsIcon(t *testing.T) {
	t.Parallel()

	info := testutil.CreateTestPackageInfo("hello")
	f := newFixture(t, info, &testutil.ScriptedStreamer{}, false)
	assert.NotContains(t, f.wizard.View(), "Icon:")

	info = testutil.CreateTestPackageInfo("hello")
	info.Icon = "./usr/share/icons/hicolor/128x128/apps/hello.png"
	f = newFixture(t, info, &testutil.ScriptedStreamer{}, false)
	assert.Contains(t, f.wizard.View(), "Icon: ./usr/share/icons/hicolor/128x128/apps/hello.png")
}

func TestWizard_InstallWithoutLicense(t *testing.T) {
	t.Parallel()

	streamer := &testutil.ScriptedStreamer{
		Lines: []string{"Unpacking hello (1.0) ... [ 50%]\n", "Setting up hello (1.0) ... [100%]\n"},
	}
	f := newFixture(t, testutil.CreateTestPackageInfo("hello"), streamer, false)

	cmd := f.press(keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, PageProgress, f.wizard.Page())
	assert.Contains(t, f.wizard.View(), "Install")

	f.settle()

	assert.Equal(t, PageDone, f.wizard.Page())
	assert.Equal(t, domain.StateSucceeded, f.wizard.snap.State)
	assert.InDelta(t, 1.0, f.wizard.snap.Fraction, 0.0001)
	assert.Equal(t, []string{"Finish"}, labels(f.wizard.buttons()))
	assert.Equal(t,
		[]string{"pkexec apt-get install -y --reinstall /tmp/hello_1.0_amd64.deb 2>&1"},
		streamer.Commands())

	cmd = f.press(keyEnter)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWizard_LicenseGatesNext(t *testing.T) {
	t.Parallel()

	info := testutil.CreateTestPackageInfo("hello")
	info.License = "Copyright 2025 Example\nPermission is granted."

	streamer := &testutil.ScriptedStreamer{}
	f := newFixture(t, info, streamer, false)

	f.press(keyEnter)
	require.Equal(t, PageLicense, f.wizard.Page())
	assert.Contains(t, f.wizard.View(), "Permission is granted.")

	// Next is disabled until the license is accepted.
	f.press(keyEnter)
	assert.Equal(t, PageLicense, f.wizard.Page())
	assert.Empty(t, streamer.Commands())

	f.press(keySpace)
	assert.True(t, f.wizard.accepted)

	f.press(keyEnter)
	assert.Equal(t, PageProgress, f.wizard.Page())

	f.settle()
	assert.Len(t, streamer.Commands(), 1)
}

func TestWizard_LicenseBack(t *testing.T) {
	t.Parallel()

	info := testutil.CreateTestPackageInfo("hello")
	info.License = "terms"

	f := newFixture(t, info, &testutil.ScriptedStreamer{}, false)

	f.press(keyEnter)
	require.Equal(t, PageLicense, f.wizard.Page())

	f.press(keyBack)
	assert.Equal(t, PageWelcome, f.wizard.Page())
}

func TestWizard_PreacceptedLicenseSkipsPage(t *testing.T) {
	t.Parallel()

	info := testutil.CreateTestPackageInfo("hello")
	info.License = "terms"

	f := newFixture(t, info, &testutil.ScriptedStreamer{}, true)

	f.press(keyEnter)
	assert.Equal(t, PageProgress, f.wizard.Page())

	f.settle()
	assert.Equal(t, PageDone, f.wizard.Page())
}

func TestWizard_Uninstall(t *testing.T) {
	t.Parallel()

	info := testutil.CreateTestPackageInfo("hello")
	info.Installed = true

	streamer := &testutil.ScriptedStreamer{Lines: []string{"Removing hello (1.0) ...\n"}}
	f := newFixture(t, info, streamer, false)

	f.press(keyTab, keyEnter)
	require.Equal(t, PageProgress, f.wizard.Page())

	f.settle()

	assert.Equal(t, application.StatusRemoved, f.wizard.snap.Status)
	assert.Equal(t, []string{"pkexec apt-get remove -y hello 2>&1"}, streamer.Commands())
}

func TestWizard_QuitBlockedWhileRunning(t *testing.T) {
	t.Parallel()

	streamer := &testutil.ScriptedStreamer{
		Gate:    make(chan struct{}),
		Started: make(chan struct{}),
	}
	f := newFixture(t, testutil.CreateTestPackageInfo("hello"), streamer, false)

	f.press(keyEnter)
	<-streamer.Started

	cmd := f.press(keyQuit)
	assert.Nil(t, cmd)
	assert.False(t, f.wizard.quitting)
	assert.Contains(t, f.wizard.View(), "cannot be interrupted")

	close(streamer.Gate)
	f.settle()

	cmd = f.press(keyQuit)
	require.NotNil(t, cmd)
	assert.True(t, f.wizard.quitting)
	assert.Equal(t, GoodbyeMessage, f.wizard.View())
}

func TestWizard_FailureShowsLogAndRestarts(t *testing.T) {
	t.Parallel()

	streamer := &testutil.ScriptedStreamer{
		Lines:    []string{"E: Could not get lock /var/lib/dpkg/lock-frontend\n"},
		ExitCode: 100,
	}
	f := newFixture(t, testutil.CreateTestPackageInfo("hello"), streamer, false)

	f.press(keyEnter)
	f.settle()

	require.Equal(t, PageDone, f.wizard.Page())
	assert.Equal(t, domain.StateFailed, f.wizard.snap.State)
	assert.Equal(t, []string{"Finish", "Start over"}, labels(f.wizard.buttons()))

	view := f.wizard.View()
	assert.Contains(t, view, "Could not get lock")
	assert.Contains(t, view, "Another package manager is running")

	f.press(keyTab, keyEnter)
	assert.Equal(t, PageWelcome, f.wizard.Page())
	assert.Equal(t, domain.StateIdle, f.ctrl.Snapshot().State)

	// A second run starts from a clean snapshot.
	streamer.ExitCode = 0
	f.press(keyEnter)
	f.settle()

	assert.Equal(t, domain.StateSucceeded, f.wizard.snap.State)
	assert.Equal(t, uint64(2), f.wizard.snap.Generation)
}

func TestWizard_DropsStaleGenerations(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.CreateTestPackageInfo("hello"), &testutil.ScriptedStreamer{}, false)

	f.press(keyEnter)
	f.ctrl.Wait()
	f.events.Drain()

	cmd := f.wizard.handleEvents(eventsMsg{{Kind: notify.KindFinished, Generation: 42}})

	assert.NotNil(t, cmd, "subscription continues after stale events")
	assert.Equal(t, PageProgress, f.wizard.Page())
}

func TestWizard_FinishedJoinsWorkerOffUpdateLoop(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	streamer := &testutil.ScriptedStreamer{Gate: gate}
	f := newFixture(t, testutil.CreateTestPackageInfo("hello"), streamer, false)

	f.press(keyEnter)
	require.Equal(t, PageProgress, f.wizard.Page())

	// A Finished event reaching the wizard while the worker is still alive
	// must not block Update.
	var cmd tea.Cmd

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, cmd = f.wizard.Update(eventsMsg{{Kind: notify.KindFinished, Generation: f.wizard.generation}})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		close(gate)
		t.Fatal("Update blocked on the running worker")
	}

	require.NotNil(t, cmd)
	assert.Equal(t, PageProgress, f.wizard.Page())

	close(gate)

	msg := cmd()
	finished, ok := msg.(finishedMsg)
	require.True(t, ok)
	assert.Equal(t, domain.StateSucceeded, finished.snap.State)

	f.wizard.Update(msg)
	assert.Equal(t, PageDone, f.wizard.Page())
	assert.Equal(t, domain.StateSucceeded, f.wizard.snap.State)
}

func TestWizard_StaleFinishedMessageIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, testutil.CreateTestPackageInfo("hello"), &testutil.ScriptedStreamer{}, false)

	f.press(keyEnter)
	f.ctrl.Wait()
	f.events.Drain()

	f.wizard.Update(finishedMsg{generation: 42, snap: domain.Snapshot{State: domain.StateFailed}})

	assert.Equal(t, PageProgress, f.wizard.Page())
}

func TestWizard_StartRejectedKeepsPage(t *testing.T) {
	t.Parallel()

	info := testutil.CreateTestPackageInfo("hello")
	info.Path = ""

	f := newFixture(t, info, &testutil.ScriptedStreamer{}, false)

	cmd := f.press(keyEnter)

	assert.Nil(t, cmd)
	assert.Equal(t, PageWelcome, f.wizard.Page())
	assert.NotEmpty(t, f.wizard.notice)
}

func TestKindLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Install", kindLabel(domain.OperationInstall))
	assert.Equal(t, "Uninstall", kindLabel(domain.OperationUninstall))
}

func TestRun_RequiresOptions(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrIncompleteOptions)
}
