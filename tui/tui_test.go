package tui

import (
	"io"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shu8h0-null/powledger/core/blockchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	blockchain.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func newModel(t *testing.T) (Model, *blockchain.Blockchain) {
	t.Helper()
	bc, err := blockchain.NewBlockchain(1)
	require.NoError(t, err)
	return NewModel(bc), bc
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestAddBlockThroughPrompt(t *testing.T) {
	m, bc := newModel(t)

	m, _ = send(t, m, key("a"), key("Alice sent 1 BTC to Bob"))
	assert.Equal(t, modeAdd, m.mode)

	m, cmd := send(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, modeBrowse, m.mode)
	assert.True(t, m.mining)

	m, _ = send(t, m, cmd())
	assert.False(t, m.mining)
	assert.Equal(t, 2, bc.Len())
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, blockchain.Transactions{"Alice sent 1 BTC to Bob"}, bc.Latest().Transactions())
	assert.Contains(t, m.View(), "Block 1 mined")
}

func TestTamperAndValidate(t *testing.T) {
	m, bc := newModel(t)
	require.NoError(t, bc.AddBlock(blockchain.Transactions{"A"}))
	require.NoError(t, bc.AddBlock(blockchain.Transactions{"B"}))

	m, _ = send(t, m, key("down"), key("t"), key("X"), key("enter"))
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, "Block 1 has been tampered", m.status)

	b, err := bc.Block(1)
	require.NoError(t, err)
	assert.Equal(t, blockchain.Transactions{"X"}, b.Transactions())

	m, _ = send(t, m, key("v"))
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "INVALID")
}

func TestValidateFreshChain(t *testing.T) {
	m, _ := newModel(t)
	m, _ = send(t, m, key("v"))
	assert.False(t, m.statusErr)
	assert.Equal(t, "Chain is VALID", m.status)
}

func TestEmptyPayloadIsRejected(t *testing.T) {
	m, bc := newModel(t)

	m, cmd := send(t, m, key("a"), key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, modeAdd, m.mode)
	assert.True(t, m.statusErr)
	assert.Equal(t, 1, bc.Len())
}

func TestEscCancelsPrompt(t *testing.T) {
	m, bc := newModel(t)

	m, _ = send(t, m, key("t"), key("q"), key("esc"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, "['Genesis Block']", bc.Latest().Transactions().String())
}

func TestCursorStaysInRange(t *testing.T) {
	m, bc := newModel(t)
	require.NoError(t, bc.AddBlock(blockchain.Transactions{"A"}))

	m, _ = send(t, m, key("up"), key("k"))
	assert.Equal(t, 0, m.cursor)

	m, _ = send(t, m, key("j"), key("down"), key("down"))
	assert.Equal(t, 1, m.cursor)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := send(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsSelectedBlock(t *testing.T) {
	m, bc := newModel(t)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})

	view := m.View()
	assert.Contains(t, view, "Chain (difficulty 1)")
	assert.Contains(t, view, shortHash(bc.Latest().Hash()))
	assert.Contains(t, view, "Genesis Block")
}

func TestPromptExplainsCommaSplitting(t *testing.T) {
	m, _ := newModel(t)
	assert.Contains(t, m.input.Placeholder, "cannot contain a comma")
}

func TestViewRespondsWhileMining(t *testing.T) {
	m, _ := newModel(t)

	m, cmd := send(t, m, key("a"), key("A"), key("enter"))
	require.NotNil(t, cmd)

	mined := make(chan tea.Msg, 1)
	go func() { mined <- cmd() }()

	assert.Contains(t, m.View(), "Mining...")
	m, _ = send(t, m, key("a"))
	assert.Equal(t, modeBrowse, m.mode)

	m, _ = send(t, m, <-mined)
	assert.False(t, m.mining)
}
