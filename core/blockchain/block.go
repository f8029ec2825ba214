package blockchain

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shu8h0-null/powledger/core/logger"
)

var log = logger.NewLogger()

// SetLogOutput redirects the package logger, e.g. to io.Discard in tests or
// while the explorer owns the terminal.
func SetLogOutput(w io.Writer) {
	log.SetOutput(w)
}

var labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#79c3ee"))

// Block is a sealed record in the chain. Fields are only changed through
// methods that reseal, so Hash always matches GenerateHash outside of a
// running mining step.
type Block struct {
	index      uint64
	timestamp  int64
	txs        Transactions
	prevHash   string
	nonce      uint64
	difficulty int
	hash       string
}

func NewBlock(index uint64, txs Transactions, prevHash string, difficulty int) *Block {
	return newBlockAt(index, txs, prevHash, difficulty, time.Now().Unix())
}

func newBlockAt(index uint64, txs Transactions, prevHash string, difficulty int, timestamp int64) *Block {
	b := &Block{
		index:      index,
		timestamp:  timestamp,
		txs:        txs.clone(),
		prevHash:   prevHash,
		difficulty: difficulty,
	}
	b.Reseal()
	return b
}

func (b *Block) Index() uint64 { return b.index }
func (b *Block) Timestamp() int64 { return b.timestamp }
func (b *Block) PrevHash() string { return b.prevHash }
func (b *Block) Nonce() uint64 { return b.nonce }
func (b *Block) Difficulty() int { return b.difficulty }
func (b *Block) Hash() string { return b.hash }

// Transactions returns a copy of the payload.
func (b *Block) Transactions() Transactions {
	return b.txs.clone()
}

// GenerateHash is the hex SHA-256 of index, timestamp, payload, previous hash
// and nonce concatenated without separators.
func (b *Block) GenerateHash() string {
	return b.hashWithNonce(b.nonce)
}

func (b *Block) hashWithNonce(nonce uint64) string {
	return hashHex(b.hashPrefix() + formatNonce(nonce))
}

func (b *Block) hashPrefix() string {
	return strconv.FormatUint(b.index, 10) +
		strconv.FormatInt(b.timestamp, 10) +
		b.txs.String() +
		b.prevHash
}

// Reseal recomputes the stored hash from the current field values.
func (b *Block) Reseal() {
	b.hash = b.GenerateHash()
}

// IsSealed reports whether the stored hash meets the block's difficulty.
func (b *Block) IsSealed() bool {
	return hasLeadingZeros(b.hash, b.difficulty)
}

// MineBlock runs an unbounded sequential proof-of-work search.
func (b *Block) MineBlock() error {
	return NewMiner().Mine(context.Background(), b)
}

func (b *Block) setNonce(nonce uint64) {
	b.nonce = nonce
	b.Reseal()
}

func (b *Block) setTransactions(txs Transactions) {
	b.txs = txs.clone()
	b.Reseal()
}

func (b *Block) fields() [][2]string {
	return [][2]string{
		{"Block Index", strconv.FormatUint(b.index, 10)},
		{"Timestamp", strconv.FormatInt(b.timestamp, 10)},
		{"Transactions", b.txs.String()},
		{"Previous Hash", b.prevHash},
		{"Current Hash", b.hash},
		{"Nonce", strconv.FormatUint(b.nonce, 10)},
	}
}

// DisplayBlock writes every field of the block to w, one per line.
func (b *Block) DisplayBlock(w io.Writer) {
	for _, f := range b.fields() {
		fmt.Fprintln(w, labelStyle.Render(f[0]+":"), f[1])
	}
}

func (b *Block) String() string {
	lines := make([]string, 0, 6)
	for _, f := range b.fields() {
		lines = append(lines, f[0]+": "+f[1])
	}
	return strings.Join(lines, "\n")
}
