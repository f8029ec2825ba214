package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shu8h0-null/powledger/core/blockchain"
)

const (
	modeBrowse = iota
	modeAdd
	modeTamper
)

type minedMsg struct {
	err error
}

// Model is the explorer over a single chain. The chain is shared, so
// mutations made here are visible to the caller after the program exits.
type Model struct {
	bc        *blockchain.Blockchain
	mode      int
	cursor    int
	input     textinput.Model
	mining    bool
	status    string
	statusErr bool
	width     int
	height    int
}

func NewModel(bc *blockchain.Blockchain) Model {
	input := textinput.New()
	input.Prompt = "-> "
	input.Placeholder = "Transactions separated by commas (an entry cannot contain a comma)"
	input.CharLimit = 256
	input.Width = 70

	return Model{
		bc:    bc,
		mode:  modeBrowse,
		input: input,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case minedMsg:
		m.mining = false
		if msg.err != nil {
			m.setError(msg.err.Error())
			return m, nil
		}
		m.cursor = m.bc.Len() - 1
		m.setStatus(fmt.Sprintf("Block %d mined", m.cursor))
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updatePrompt(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "down", "j":
		if m.cursor < m.bc.Len()-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a":
		if m.mining {
			return m, nil
		}
		return m.openPrompt(modeAdd)
	case "t":
		return m.openPrompt(modeTamper)
	case "v":
		if err := m.bc.Verify(); err != nil {
			m.setError("Chain is INVALID: " + err.Error())
		} else {
			m.setStatus("Chain is VALID")
		}
	}
	return m, nil
}

func (m Model) openPrompt(mode int) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Reset()
	return m, m.input.Focus()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.closePrompt()
		return m, nil
	case "enter":
		txs := blockchain.ParseTransactions(m.input.Value())
		if len(txs) == 0 {
			m.setError("Transactions cannot be empty")
			return m, nil
		}

		mode := m.mode
		m.closePrompt()
		if mode == modeAdd {
			m.mining = true
			m.setStatus("Mining...")
			return m, mineCmd(m.bc, txs)
		}

		if err := m.bc.TamperBlock(m.cursor, txs); err != nil {
			m.setError(err.Error())
		} else {
			m.setStatus(fmt.Sprintf("Block %d has been tampered", m.cursor))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func mineCmd(bc *blockchain.Blockchain, txs blockchain.Transactions) tea.Cmd {
	return func() tea.Msg {
		return minedMsg{err: bc.AddBlockContext(context.Background(), txs)}
	}
}

func (m Model) View() string {
	blocks := m.bc.Blocks()

	var list strings.Builder
	list.WriteString(titleStyle.Render(fmt.Sprintf("Chain (difficulty %d)", m.bc.Difficulty())) + "\n\n")
	for i, b := range blocks {
		line := fmt.Sprintf("#%d %s", b.Index(), shortHash(b.Hash()))
		if i == m.cursor {
			list.WriteString("=> " + selectedStyle.Render(line) + "\n")
		} else {
			list.WriteString("   " + unSelectedStyle.Render(line) + "\n")
		}
	}

	var detail string
	if m.cursor < len(blocks) {
		b := blocks[m.cursor]
		seal := successStyle.Render("sealed")
		if !b.IsSealed() {
			seal = errorStyle.Render("not sealed")
		}
		detail = boxStyle.Render(b.String() + "\n\n" + seal)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(list.String()), detail)

	var footer string
	switch m.mode {
	case modeAdd:
		footer = inputStyle.Render("New block transactions") + "\n" + m.input.View()
	case modeTamper:
		footer = inputStyle.Render(fmt.Sprintf("Tamper block %d with", m.cursor)) + "\n" + m.input.View()
	default:
		footer = helpStyle.Render("↑/↓ select • a add block • t tamper • v validate • q quit")
	}

	status := ""
	if m.status != "" {
		if m.statusErr {
			status = errorStyle.Render(m.status)
		} else {
			status = successStyle.Render(m.status)
		}
	}

	return Centered(lipgloss.JoinVertical(lipgloss.Left, body, "", status, footer), m.width, m.height)
}

// Run starts the explorer on bc. Package logs are silenced while the
// program owns the terminal.
func Run(bc *blockchain.Blockchain) error {
	blockchain.SetLogOutput(io.Discard)
	defer blockchain.SetLogOutput(os.Stdout)

	p := tea.NewProgram(NewModel(bc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}
