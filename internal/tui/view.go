package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	artistStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	spectrumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	bandStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	activeBand    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	playingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

const spectrumRows = 6

var levels = []rune(" ▁▂▃▄▅▆▇█")

func (m Model) View() string {
	if m.help {
		return boxStyle.Render(helpText)
	}

	// Border and padding take two columns on each side.
	inner := max(m.width-2, 24)
	content := inner - 2
	sections := []string{
		m.nowPlaying(content),
		spectrumStyle.Render(renderSpectrum(m.bins, content, spectrumRows)),
		m.equaliser(),
		m.effects(),
		m.queue(content),
		helpStyle.Render("space play/pause · n/p next/prev · ←/→ seek · +/- volume · m mute · s shuffle · r repeat · ? help · q quit"),
	}
	return boxStyle.Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) nowPlaying(width int) string {
	s := m.snap
	if s.CurrentTrack == nil {
		return titleStyle.Render("Nothing playing")
	}

	icon := "⏸"
	if s.IsPlaying {
		icon = "▶"
	}
	title := titleStyle.Render(fmt.Sprintf("%s %s", icon, s.CurrentTrack.Title))
	artist := artistStyle.Render(s.CurrentTrack.Artist)

	times := fmt.Sprintf(" %s / %s", formatTime(s.CurrentTime), formatTime(s.Duration))
	bar := progressStyle.Render(progressBar(s.CurrentTime, s.Duration, max(width-len(times), 10)))

	vol := fmt.Sprintf("vol %3.0f%%", s.Volume*100)
	if s.IsMuted {
		vol = "muted"
	}
	flags := fmt.Sprintf("%s · repeat %s · shuffle %s", vol, s.RepeatMode, onOff(s.IsShuffled))

	return lipgloss.JoinVertical(lipgloss.Left, title, artist, bar+times, helpStyle.Render(flags))
}

func (m Model) equaliser() string {
	parts := make([]string, 0, len(m.snap.EQBands)+1)
	parts = append(parts, headerStyle.Render("EQ"))
	for i, b := range m.snap.EQBands {
		cell := fmt.Sprintf("%s %+.0f", b.Label, b.Gain)
		if i == m.band {
			parts = append(parts, activeBand.Render("["+cell+"]"))
			continue
		}
		parts = append(parts, bandStyle.Render(" "+cell+" "))
	}
	return strings.Join(parts, " ")
}

func (m Model) effects() string {
	e := m.snap.Effects
	return helpStyle.Render(fmt.Sprintf("reverb %.1f · delay %.1f (%.2fs) · pan %+.1f · %s %.0f Hz",
		e.Reverb, e.Delay, e.DelayTime, e.StereoPanner, e.Filter.Type, e.Filter.Frequency))
}

func (m Model) queue(width int) string {
	lines := []string{headerStyle.Render("Queue")}
	if len(m.snap.Queue) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, helpStyle.Render("  (empty)"))...)
	}

	var currentID string
	if m.snap.CurrentTrack != nil {
		currentID = m.snap.CurrentTrack.ID
	}
	for i, t := range m.snap.Queue {
		line := truncate(fmt.Sprintf("%2d. %s - %s", i+1, t.Artist, t.Title), width-2)
		switch {
		case i == m.cursor:
			line = selectedStyle.Render("> " + line)
		case t.ID == currentID:
			line = playingStyle.Render("♪ " + line)
		default:
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderSpectrum draws bins as vertical bars, averaging bins into columns.
func renderSpectrum(bins []byte, width, rows int) string {
	if width <= 0 || rows <= 0 {
		return ""
	}
	cols := make([]float64, width)
	if len(bins) > 0 {
		for c := range cols {
			lo := c * len(bins) / width
			hi := max((c+1)*len(bins)/width, lo+1)
			var sum float64
			for _, v := range bins[lo:min(hi, len(bins))] {
				sum += float64(v)
			}
			cols[c] = sum / float64(hi-lo) / 255
		}
	}

	steps := len(levels) - 1
	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		for _, v := range cols {
			fill := v*float64(rows) - float64(r)
			idx := int(math.Round(math.Max(0, math.Min(1, fill)) * float64(steps)))
			b.WriteRune(levels[idx])
		}
		if r > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func progressBar(pos, total float64, width int) string {
	frac := 0.0
	if total > 0 {
		frac = math.Max(0, math.Min(1, pos/total))
	}
	filled := int(math.Round(frac * float64(width)))
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

func formatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

const helpText = `Keys

  space        play / pause
  n / p        next / previous track
  ← / →        seek 5 s
  + / -        volume
  m            mute
  s            shuffle
  r            repeat off → all → one
  ↑ / ↓, enter select and play a queued track
  tab          select EQ band
  [ / ]        band gain -1 / +1 dB, 0 resets
  w / W        reverb up / down
  d / D        delay feedback up / down
  , / .        pan left / right
  q            quit

press any key`
