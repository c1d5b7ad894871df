package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	bubbletea "github.com/charmbracelet/bubbletea"

	"github.com/jurybox/jurybox/internal/client"
	"github.com/jurybox/jurybox/internal/style"
)

// probeMsg carries one poll result into the watch model.
type probeMsg client.Readiness

// watchModel is the live readiness view behind 'jx status --watch'.
type watchModel struct {
	client    *client.Client
	spin      spinner.Model
	readiness client.Readiness
	probed    bool
	quitting  bool
}

func newWatchModel(c *client.Client) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return watchModel{client: c, spin: sp}
}

func (m watchModel) probe() bubbletea.Cmd {
	return func() bubbletea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return probeMsg(m.client.Probe(ctx))
	}
}

func (m watchModel) Init() bubbletea.Cmd {
	return bubbletea.Batch(m.spin.Tick, m.probe())
}

func (m watchModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, bubbletea.Quit
		}
		return m, nil
	case probeMsg:
		m.readiness = client.Readiness(msg)
		m.probed = true
		return m, bubbletea.Tick(time.Second, func(time.Time) bubbletea.Msg {
			return m.probe()()
		})
	default:
		var cmd bubbletea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}
	header := style.Bold.Render(fmt.Sprintf("jx daemon at %s", m.client.Addr()))
	var line string
	switch {
	case !m.probed:
		line = fmt.Sprintf("%s probing...", m.spin.View())
	case m.readiness == client.ReadinessReady:
		line = fmt.Sprintf("%s ready", style.Success.Render(style.IconPass))
	case m.readiness == client.ReadinessLoading:
		line = fmt.Sprintf("%s loading model", m.spin.View())
	default:
		line = fmt.Sprintf("%s unavailable", style.Error.Render(style.IconFail))
	}
	return fmt.Sprintf("%s\n\n  %s\n\n%s\n", header, line, style.Dim.Render("q to quit"))
}

func runStatusWatch(c *client.Client, stdout io.Writer) error {
	p := bubbletea.NewProgram(newWatchModel(c), bubbletea.WithOutput(stdout))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}
