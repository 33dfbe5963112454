package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/timtim-hub/owl-framework/arxiv"
	"github.com/timtim-hub/owl-framework/client"
	"github.com/timtim-hub/owl-framework/essay"
	"github.com/timtim-hub/owl-framework/society"
)

const (
	fieldAPIKey = iota
	fieldTopic
	fieldPages
	fieldInstructions
	fieldCount
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	runningStyle = statusStyle.Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF5F87")).
			Padding(1).
			MarginTop(1)

	detailStyle = lipgloss.NewStyle().Faint(true)
)

// progressMsg carries one stage notification from the in-flight run.
type progressMsg struct {
	stage    string
	fraction float64
}

// generationDoneMsg carries the outcome of a run.
type generationDoneMsg struct {
	result society.Result
	path   string
	cost   float64
	err    error
}

type model struct {
	inputs     [fieldCount]textinput.Model
	focusIndex int

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool

	isProcessing bool
	finished     bool
	canceled     bool

	status   string
	stage    string
	fraction float64

	progressChan chan progressMsg

	result     society.Result
	outputPath string
	totalCost  float64
	err        error
}

func initialModel(apiKey string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	m := model{
		spinner:      s,
		status:       "Fill in the form and press Enter on the last field to generate.",
		progressChan: make(chan progressMsg, 100),
	}

	key := textinput.New()
	key.Placeholder = "sk-..."
	key.EchoMode = textinput.EchoPassword
	key.SetValue(apiKey)
	key.Focus()
	m.inputs[fieldAPIKey] = key

	topic := textinput.New()
	topic.Placeholder = "e.g., Recent advances in quantum computing"
	m.inputs[fieldTopic] = topic

	pages := textinput.New()
	pages.Placeholder = strconv.Itoa(essay.DefaultPages)
	pages.CharLimit = 3
	m.inputs[fieldPages] = pages

	instructions := textinput.New()
	instructions.Placeholder = essay.DefaultInstructions
	m.inputs[fieldInstructions] = instructions

	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.isProcessing {
				// Cosmetic cancel: the in-flight society run is not
				// interruptible; its result is dropped when it arrives.
				m.canceled = true
				m.isProcessing = false
				m.status = "Generation canceled"
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			if !m.isProcessing && !m.finished {
				if m.focusIndex < fieldCount-1 {
					return m.focusField(m.focusIndex + 1)
				}
				return m.startGeneration()
			}
		case "tab", "down":
			if !m.isProcessing && !m.finished {
				return m.focusField((m.focusIndex + 1) % fieldCount)
			}
		case "shift+tab", "up":
			if !m.isProcessing && !m.finished {
				return m.focusField((m.focusIndex + fieldCount - 1) % fieldCount)
			}
		case "q":
			if m.finished {
				return m, tea.Quit
			}
		}

	case progressMsg:
		if msg.stage != "" && m.isProcessing {
			m.stage = msg.stage
			m.fraction = msg.fraction
		}
		if m.isProcessing {
			cmds = append(cmds, m.listenForProgress())
		}

	case generationDoneMsg:
		if m.canceled {
			// The run completed after a cancel; keep the canceled status.
			return m, nil
		}
		m.isProcessing = false
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.finished = true
		m.result = msg.result
		m.outputPath = msg.path
		m.totalCost = msg.cost
		m.status = "Essay generation completed!"
		if m.ready {
			m.viewport.SetContent(m.renderEssay())
		}

	case spinner.TickMsg:
		if m.isProcessing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.isProcessing && !m.finished {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.finished && m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) focusField(index int) (tea.Model, tea.Cmd) {
	m.inputs[m.focusIndex].Blur()
	m.focusIndex = index
	return m, m.inputs[m.focusIndex].Focus()
}

func (m model) startGeneration() (tea.Model, tea.Cmd) {
	apiKey := strings.TrimSpace(m.inputs[fieldAPIKey].Value())
	if apiKey == "" {
		m.status = "Please enter your OpenAI API key"
		return m, nil
	}

	pages := essay.DefaultPages
	if raw := strings.TrimSpace(m.inputs[fieldPages].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			m.status = fmt.Sprintf("Invalid page count: %q", raw)
			return m, nil
		}
		pages = parsed
	}

	req := essay.NewRequest(m.inputs[fieldTopic].Value(), pages, m.inputs[fieldInstructions].Value())
	prompt, err := essay.ComposeTask(req)
	if err != nil {
		m.status = fmt.Sprintf("Invalid request: %v", err)
		return m, nil
	}

	m.isProcessing = true
	m.canceled = false
	m.err = nil
	m.stage = "Setting up agent society..."
	m.fraction = 0
	m.status = "Generating essay... This may take several minutes. Press Esc to cancel."

	return m, tea.Batch(
		m.spinner.Tick,
		m.runGeneration(apiKey, req, prompt),
		m.listenForProgress(),
	)
}

// runGeneration executes the full pipeline in a tea command goroutine.
func (m model) runGeneration(apiKey string, req essay.Request, prompt string) tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		apiClient, err := client.New(client.Config{APIKey: apiKey})
		if err != nil {
			return generationDoneMsg{err: err}
		}
		defer apiClient.Close()

		config := society.DefaultConfig()
		config.Research = arxiv.NewSource(req.Topic, arxiv.DefaultLimit)
		config.Progress = func(stage string, fraction float64) {
			select {
			case progressChan <- progressMsg{stage: stage, fraction: fraction}:
			default:
				// Channel full, skip update.
			}
		}
		runner := society.NewRolePlaying(config, apiClient)

		result, err := runner.Run(context.Background(), prompt)
		if err != nil {
			return generationDoneMsg{err: err}
		}

		resolver := essay.NewResolver(essay.DefaultBaseDir)
		path, err := resolver.Resolve(req.Topic, "", true)
		if err != nil {
			return generationDoneMsg{err: err}
		}
		if err := essay.WriteEssay(path, result.Answer); err != nil {
			return generationDoneMsg{err: err}
		}

		return generationDoneMsg{
			result: result,
			path:   path,
			cost:   runner.Usage().TotalCost(),
		}
	}
}

// listenForProgress polls the progress channel without blocking the UI loop.
func (m model) listenForProgress() tea.Cmd {
	return func() tea.Msg {
		select {
		case update := <-m.progressChan:
			return update
		case <-time.After(100 * time.Millisecond):
			return progressMsg{}
		}
	}
}

func (m model) View() string {
	var s string

	s += titleStyle.Render("🦉 OWL Scientific Essay Generator")
	s += "\n"

	switch {
	case m.finished:
		if !m.ready {
			return s + "\nInitializing...\n"
		}
		s += m.viewport.View() + "\n"
		s += detailStyle.Render(fmt.Sprintf("Saved to: %s • Tokens used: %d • Cost: $%.4f",
			m.outputPath, m.result.TokenCount, m.totalCost))
		s += "\n" + detailStyle.Render("↑/↓: scroll • q/ctrl+c: quit")

	case m.isProcessing:
		s += fmt.Sprintf("\n%s %s\n", m.spinner.View(), m.stage)
		s += fmt.Sprintf("\n%3.0f%% complete\n", m.fraction*100)
		s += runningStyle.Render(m.status)

	default:
		labels := [fieldCount]string{"OpenAI API Key", "Essay Topic", "Pages", "Additional Instructions"}
		for i, input := range m.inputs {
			s += labelStyle.Render(labels[i]) + "\n"
			s += input.View() + "\n\n"
		}
		s += detailStyle.Render("tab/shift+tab: move between fields • enter on last field: generate • esc: quit")
		s += "\n"
		if m.err != nil {
			s += errorStyle.Render(m.status)
		} else {
			s += statusStyle.Render(m.status)
		}
	}

	return s
}

func (m model) renderEssay() string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.viewport.Width-4),
	)
	if err != nil {
		return m.result.Answer
	}

	rendered, err := renderer.Render(m.result.Answer)
	if err != nil {
		return m.result.Answer
	}
	return strings.TrimRight(rendered, "\n")
}
