package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/episode"
)

const (
	roadWidth  = 60
	roadHeight = 4
	carLength  = 8 // sub-pixels
	carHeight  = 6
	frameRate  = time.Second / 30
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Replay plays back a finished trace.
type Replay struct {
	trace   *episode.Trace
	tuning  acc.Tuning
	canvas  *Canvas
	theme   int
	speed   int // rows per frame
	head    int
	running bool
	help    bool

	// AutoQuit ends the program when playback reaches the last row.
	AutoQuit bool
}

func NewReplay(tr *episode.Trace, tuning acc.Tuning) Replay {
	return Replay{
		trace:   tr,
		tuning:  tuning,
		canvas:  NewCanvas(roadWidth, roadHeight),
		speed:   1,
		running: true,
	}
}

// WithTheme selects a theme by name. Unknown names keep the default.
func (r Replay) WithTheme(name string) Replay {
	for i, t := range Themes {
		if t.Name == name {
			r.theme = i
		}
	}
	return r
}

func (r Replay) Theme() Theme { return Themes[r.theme] }

// Run blocks until the user quits or, with autoQuit, playback ends.
func Run(tr *episode.Trace, tuning acc.Tuning, theme string, autoQuit bool) error {
	r := NewReplay(tr, tuning).WithTheme(theme)
	r.AutoQuit = autoQuit
	_, err := tea.NewProgram(r).Run()
	return err
}

func (r Replay) Head() int     { return r.head }
func (r Replay) Running() bool { return r.running }

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (r Replay) Init() tea.Cmd {
	return tick()
}

func (r Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := len(r.trace.Rows) - 1
	perSecond := 1
	if r.trace.Dt > 0 {
		perSecond = max(1, int(math.Round(1/r.trace.Dt)))
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return r, tea.Quit
		case " ":
			r.running = !r.running
		case "[", "left":
			r.head = max(0, r.head-perSecond)
		case "]", "right":
			r.head = min(last, r.head+perSecond)
		case "+", "=":
			r.speed = min(r.speed*2, 64)
		case "-":
			r.speed = max(r.speed/2, 1)
		case "t":
			r.theme = (r.theme + 1) % len(Themes)
		case "?":
			r.help = !r.help
		}
	case TickMsg:
		if r.running {
			r.head = min(last, r.head+r.speed)
		}
		if r.head >= last {
			r.running = false
			if r.AutoQuit {
				return r, tea.Quit
			}
		}
		return r, tick()
	}
	return r, nil
}

// Frame describes the row under the play head.
type Frame struct {
	Row      episode.TraceRow
	Time     float64
	Command  float64
	Applied  bool
	Zone     acc.Zone
	Critical float64
	Safe     float64
}

func (r Replay) Frame() Frame {
	row := r.trace.Rows[r.head]
	critical, safe := acc.Boundaries(row.EgoVelocity, r.tuning)
	f := Frame{
		Row:      row,
		Time:     r.trace.Time(r.head),
		Zone:     acc.Classify(row.DistanceToLead, critical, safe),
		Critical: critical,
		Safe:     safe,
	}
	if r.head < len(r.trace.Commands) {
		f.Command, f.Applied = r.trace.Commands[r.head], true
	}
	return f
}

func (r Replay) View() string {
	if len(r.trace.Rows) == 0 {
		return "empty trace\n"
	}
	theme := r.Theme()
	f := r.Frame()

	r.drawRoad(f)

	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Title)
	s.WriteString(title.Render(strings.ToUpper(r.trace.Name)) + "\n")

	status := "PLAYING"
	if !r.running {
		status = "PAUSED"
		if r.head == len(r.trace.Rows)-1 {
			status = "FINISHED"
		}
	}
	s.WriteString(fmt.Sprintf("%s x%d\n\n", status, r.speed))

	s.WriteString(labelStyle.Render("Zone") + theme.ZoneStyle(f.Zone).Render(strings.ToUpper(f.Zone.String())) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.1fs", f.Time)) + "\n")
	s.WriteString(labelStyle.Render("Ego") + valueStyle.Render(fmt.Sprintf("%.2f m/s", f.Row.EgoVelocity)) + "\n")
	s.WriteString(labelStyle.Render("Desired") + valueStyle.Render(fmt.Sprintf("%.2f m/s", f.Row.TargetSpeed)) + "\n")
	s.WriteString(labelStyle.Render("Lead") + valueStyle.Render(fmt.Sprintf("%.2f m/s", f.Row.LeadVelocity)) + "\n")
	gap := "none"
	if d, ok := f.Row.DistanceToLead.Distance(); ok {
		gap = fmt.Sprintf("%.1f m", d)
	}
	s.WriteString(labelStyle.Render("Gap") + valueStyle.Render(gap) + "\n")
	s.WriteString(labelStyle.Render("Critical") + valueStyle.Render(fmt.Sprintf("%.1f m", f.Critical)) + "\n")
	s.WriteString(labelStyle.Render("Safe") + valueStyle.Render(fmt.Sprintf("%.1f m", f.Safe)) + "\n")
	if f.Applied {
		s.WriteString(labelStyle.Render("Command") + valueStyle.Render(fmt.Sprintf("%+.2f m/s²", f.Command)) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause [ ]:Seek +/-:Speed\nT:Theme ?:Help Q:Quit"))

	road := lipgloss.NewStyle().Foreground(theme.Road).Render(r.canvas.String())
	left := canvasStyle.Render(road)

	window := &episode.Trace{Dt: r.trace.Dt, Rows: r.trace.Rows[:r.head+1]}
	if chart := SpeedChart(window, roadWidth, 6); chart != "" {
		left += "\n" + graphStyle.Render(chart)
	}
	if chart := GapChart(window, roadWidth, 4); chart != "" {
		left += "\n" + graphStyle.Render(chart)
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, left, statsStyle.Render(s.String()))
	if r.help {
		return helpOverlay + "\n" + main
	}
	return main
}

const helpOverlay = `
╔══════════════════════════════════╗
║  Space   - Pause/Resume          ║
║  [ / ]   - Seek one second       ║
║  + / -   - Playback speed        ║
║  T       - Cycle themes          ║
║  ?       - Toggle this help      ║
║  Q       - Quit                  ║
╚══════════════════════════════════╝`

// drawRoad places the ego near the left edge and the lead by its gap, with
// dashed marks at the critical and safe distances.
func (r Replay) drawRoad(f Frame) {
	c := r.canvas
	c.Clear()

	w, h := c.Width*2, c.Height*4
	laneTop, laneBottom := 0, h-1
	c.HLine(0, w-1, laneTop)
	c.HLine(0, w-1, laneBottom)

	span := f.Safe * 1.5
	gap, ok := f.Row.DistanceToLead.Distance()
	if ok && gap > span {
		span = gap * 1.2
	}
	egoX := 2
	scale := float64(w-egoX-2*carLength) / span
	carY := (h - carHeight) / 2

	c.FillRect(egoX, carY, carLength, carHeight)
	front := egoX + carLength

	c.DashedVLine(front+int(f.Critical*scale), laneTop+1, laneBottom-1)
	c.DashedVLine(front+int(f.Safe*scale), laneTop+1, laneBottom-1)

	if ok {
		c.FillRect(front+int(math.Max(0, gap)*scale), carY, carLength, carHeight)
	}
}
