package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/hexapod/pkg/robot"
)

type CalibrateCommand struct {
	RobotOptions
}

func (c *CalibrateCommand) Execute(args []string) error {
	r, err := c.open()
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Println(headerStyle.Render("Hexapod calibration"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━"))
	fmt.Printf("Calibrating %s profile from %s\n\n", r.Profile(), c.Config)

	final, err := tea.NewProgram(newCalibrateModel(r.Joints()), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("calibration: %w", err)
	}
	if m := final.(calibrateModel); m.changes == 0 {
		fmt.Println("No changes.")
		return nil
	}

	var save bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Save calibration to %s?", c.Config)).
				Affirmative("Save").
				Negative("Discard").
				Value(&save),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !save {
		fmt.Println("Calibration discarded.")
		return nil
	}

	cfg := r.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SaveTo(c.Config); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Calibration saved to " + c.Config))
	return nil
}

var pulseSteps = []int{1, 5, 25}

var endpointKeys = map[string]robot.Endpoint{
	"f": robot.EndpointForward,
	"b": robot.EndpointBack,
	"u": robot.EndpointUp,
	"d": robot.EndpointDown,
	"c": robot.EndpointCenter,
}

var chartStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))

type calibrateModel struct {
	joints   []*robot.Joint
	pulses   []int
	selected int
	step     int
	chart    *streamlinechart.Model
	status   string
	changes  int
	width    int
	quitting bool
}

type tickMsg time.Time

func newCalibrateModel(joints []*robot.Joint) calibrateModel {
	lo, hi := math.MaxInt, 0
	pulses := make([]int, len(joints))
	for i, j := range joints {
		mn, mx := j.Range()
		lo, hi = min(lo, mn), max(hi, mx)
		// Unwritten joints start mid-range; nothing moves until a nudge.
		if p, ok := j.Pulse(); ok {
			pulses[i] = p
		} else {
			pulses[i] = (mn + mx) / 2
		}
	}
	margin := (hi - lo) / 10
	chart := streamlinechart.New(60, 8,
		streamlinechart.WithYRange(float64(lo-margin), float64(hi+margin)),
	)
	chart.SetDataSetStyles("pulse", runes.ThinLineStyle, lipgloss.NewStyle().Foreground(lipgloss.Color("11")))

	return calibrateModel{
		joints: joints,
		pulses: pulses,
		step:   1,
		chart:  &chart,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrateModel) Init() tea.Cmd {
	return tick()
}

func (m calibrateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 4; w > 20 {
			m.chart.Resize(w, 8)
		}
		return m, nil

	case tickMsg:
		if len(m.pulses) > 0 {
			m.chart.PushDataSet("pulse", float64(m.pulses[m.selected]))
			m.chart.DrawAll()
		}
		return m, tick()

	case tea.KeyMsg:
		m = m.handleKey(msg.String())
		return m, m.quitCmd()
	}
	return m, nil
}

func (m calibrateModel) quitCmd() tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	return nil
}

func (m calibrateModel) handleKey(key string) calibrateModel {
	if len(m.joints) == 0 {
		m.quitting = true
		return m
	}
	j := m.joints[m.selected]

	switch key {
	case "enter", "q", "ctrl+c", "esc":
		m.quitting = true
	case "up", "k":
		m.selected = (m.selected + len(m.joints) - 1) % len(m.joints)
	case "down", "j":
		m.selected = (m.selected + 1) % len(m.joints)
	case "+", "=":
		m.step = nextStep(m.step, 1)
	case "-":
		m.step = nextStep(m.step, -1)
	case "left", "h":
		m = m.nudge(j, -m.step)
	case "right", "l":
		m = m.nudge(j, m.step)
	case "[", "]":
		min, max := j.Range()
		if key == "[" {
			min = m.pulses[m.selected]
		} else {
			max = m.pulses[m.selected]
		}
		if err := j.SetRange(min, max); err != nil {
			m.status = err.Error()
			break
		}
		m.changes++
		m.status = fmt.Sprintf("%s range %d-%d", j.Name(), min, max)
	default:
		e, ok := endpointKeys[key]
		if !ok {
			break
		}
		p := math.Round(j.PercentFor(m.pulses[m.selected])*10) / 10
		if err := j.SetEndpoint(e, p); err != nil {
			m.status = err.Error()
			break
		}
		m.changes++
		m.status = fmt.Sprintf("%s %s = %g%%", j.Name(), e, p)
	}
	return m
}

func (m calibrateModel) nudge(j *robot.Joint, delta int) calibrateModel {
	p := m.pulses[m.selected] + delta
	if p < 0 {
		p = 0
	}
	if err := j.SetPulse(p); err != nil {
		m.status = err.Error()
		return m
	}
	m.pulses[m.selected] = p
	m.status = ""
	return m
}

func nextStep(step, dir int) int {
	for i, s := range pulseSteps {
		if s == step {
			i += dir
			if i < 0 || i >= len(pulseSteps) {
				return step
			}
			return pulseSteps[i]
		}
	}
	return pulseSteps[0]
}

func (m calibrateModel) View() string {
	if m.quitting {
		return ""
	}

	headerCell := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	nameCell := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	selectedCell := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(m.joints))
	for i, j := range m.joints {
		min, max := j.Range()
		row := []string{j.Name(), fmt.Sprintf("%d", j.Channel()), fmt.Sprintf("%d", m.pulses[i]),
			fmt.Sprintf("%d", min), fmt.Sprintf("%d", max)}
		for _, e := range robot.AllEndpoints() {
			if p, ok := j.Endpoint(e); ok {
				row = append(row, fmt.Sprintf("%g", p))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "Ch", "Pulse", "Min", "Max", "Fwd", "Back", "Up", "Down", "Center").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCell
			case row == m.selected:
				return selectedCell
			case col == 0:
				return nameCell
			default:
				return cell
			}
		})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf(
		"↑/↓ joint  ←/→ pulse ±%d  +/- step  [ ] min/max  f b u d c endpoint  enter done", m.step)))
	if m.status != "" {
		sb.WriteString("\n" + m.status)
	}
	return sb.String()
}
