// Package tui is the terminal front end of algoplay.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-player/player"
)

// Controller is the part of the player the terminal UI drives.
type Controller interface {
	Snapshot() player.Snapshot
	PlayTrack(ctx context.Context, t player.Track)
	TogglePlay(ctx context.Context)
	PlayNext(ctx context.Context)
	PlayPrevious(ctx context.Context)
	Seek(seconds float64)
	SetVolume(v float64)
	ToggleMute()
	ToggleShuffle()
	CycleRepeat() player.RepeatMode
	SetEqBandGain(index int, gain float64)
	UpdateEffects(patch player.EffectsPatch)
}

const (
	refreshInterval = 200 * time.Millisecond
	seekStep        = 5.0
	volumeStep      = 0.05
	gainStep        = 1.0
	mixStep         = 0.1
)

type (
	refreshMsg  struct{}
	spectrumMsg []byte
)

// Model is the bubbletea model of the player screen.
type Model struct {
	ctx      context.Context
	ctl      Controller
	spectrum <-chan []byte

	snap   player.Snapshot
	bins   []byte
	cursor int
	band   int
	width  int
	help   bool
}

// New creates the model. spectrum may be nil.
func New(ctx context.Context, ctl Controller, spectrum <-chan []byte) Model {
	return Model{
		ctx:      ctx,
		ctl:      ctl,
		spectrum: spectrum,
		snap:     ctl.Snapshot(),
		width:    80,
	}
}

// Run shows the player until the user quits or ctx is done.
func Run(ctx context.Context, ctl Controller, spectrum <-chan []byte) error {
	p := tea.NewProgram(New(ctx, ctl, spectrum), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitSpectrum())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) waitSpectrum() tea.Cmd {
	if m.spectrum == nil {
		return nil
	}
	ch := m.spectrum
	return func() tea.Msg {
		bins, ok := <-ch
		if !ok {
			return nil
		}
		return spectrumMsg(bins)
	}
}

// run executes a player call off the UI goroutine; starting playback may
// block while the source loads.
func (m Model) run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return refreshMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.snap = m.ctl.Snapshot()
		m.cursor = min(m.cursor, max(len(m.snap.Queue)-1, 0))
		return m, tick()
	case spectrumMsg:
		m.bins = msg
		return m, m.waitSpectrum()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help {
		m.help = false
		return m, nil
	}

	ctx, ctl, s := m.ctx, m.ctl, m.snap
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "?":
		m.help = true
		return m, nil
	case " ":
		return m, m.run(func() { ctl.TogglePlay(ctx) })
	case "n":
		return m, m.run(func() { ctl.PlayNext(ctx) })
	case "p":
		return m, m.run(func() { ctl.PlayPrevious(ctx) })
	case "right":
		ctl.Seek(s.CurrentTime + seekStep)
	case "left":
		ctl.Seek(max(s.CurrentTime-seekStep, 0))
	case "+", "=":
		ctl.SetVolume(s.Volume + volumeStep)
	case "-":
		ctl.SetVolume(s.Volume - volumeStep)
	case "m":
		ctl.ToggleMute()
	case "s":
		ctl.ToggleShuffle()
	case "r":
		ctl.CycleRepeat()
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(len(s.Queue)-1, 0))
	case "enter":
		if m.cursor < len(s.Queue) {
			t := s.Queue[m.cursor]
			return m, m.run(func() { ctl.PlayTrack(ctx, t) })
		}
	case "tab":
		m.band = (m.band + 1) % len(player.EQFrequencies)
	case "shift+tab":
		m.band = (m.band + len(player.EQFrequencies) - 1) % len(player.EQFrequencies)
	case "]":
		m.adjustBand(gainStep)
	case "[":
		m.adjustBand(-gainStep)
	case "0":
		ctl.SetEqBandGain(m.band, 0)
	case "w":
		ctl.UpdateEffects(player.EffectsPatch{Reverb: player.Ptr(s.Effects.Reverb + mixStep)})
	case "W":
		ctl.UpdateEffects(player.EffectsPatch{Reverb: player.Ptr(s.Effects.Reverb - mixStep)})
	case "d":
		ctl.UpdateEffects(player.EffectsPatch{Delay: player.Ptr(s.Effects.Delay + mixStep)})
	case "D":
		ctl.UpdateEffects(player.EffectsPatch{Delay: player.Ptr(s.Effects.Delay - mixStep)})
	case ",":
		ctl.UpdateEffects(player.EffectsPatch{StereoPanner: player.Ptr(s.Effects.StereoPanner - mixStep)})
	case ".":
		ctl.UpdateEffects(player.EffectsPatch{StereoPanner: player.Ptr(s.Effects.StereoPanner + mixStep)})
	default:
		return m, nil
	}
	m.snap = ctl.Snapshot()
	return m, nil
}

func (m *Model) adjustBand(delta float64) {
	if m.band >= len(m.snap.EQBands) {
		return
	}
	m.ctl.SetEqBandGain(m.band, m.snap.EQBands[m.band].Gain+delta)
}
