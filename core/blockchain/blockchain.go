package blockchain

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 64")
	ErrIndexOutOfRange   = errors.New("block index out of range")
	ErrBrokenLink        = errors.New("previous hash does not match predecessor")
	ErrHashMismatch      = errors.New("stored hash does not match block contents")
	ErrInsufficientWork  = errors.New("hash does not meet difficulty")
)

const (
	genesisPayload  = "Genesis Block"
	genesisPrevHash = "0"
)

// MaxDifficulty is the length of a hex SHA-256 digest; no hash can have more
// leading zeros than that.
const MaxDifficulty = sha256.Size * 2

var separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))

type Blockchain struct {
	mu         sync.RWMutex
	chain      []*Block
	difficulty int // every block this chain creates carries it
	miner      *Miner
	clock      func() time.Time
	events     *EventFeed[BlockEvent]
}

type Option func(*Blockchain)

func WithMiner(m *Miner) Option {
	return func(bc *Blockchain) {
		bc.miner = m
	}
}

// WithClock sets the time source for block timestamps.
func WithClock(clock func() time.Time) Option {
	return func(bc *Blockchain) {
		bc.clock = clock
	}
}

func WithEvents(feed *EventFeed[BlockEvent]) Option {
	return func(bc *Blockchain) {
		bc.events = feed
	}
}

// NewBlockchain returns a chain holding a mined genesis block.
func NewBlockchain(difficulty int, opts ...Option) (*Blockchain, error) {
	if difficulty <= 0 || difficulty > MaxDifficulty {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDifficulty, difficulty)
	}

	bc := &Blockchain{
		difficulty: difficulty,
		miner:      NewMiner(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(bc)
	}

	genesis := newBlockAt(0, Transactions{genesisPayload}, genesisPrevHash, difficulty, bc.clock().Unix())
	if err := bc.miner.Mine(context.Background(), genesis); err != nil {
		return nil, fmt.Errorf("creating genesis block: %w", err)
	}
	bc.chain = append(bc.chain, genesis)
	bc.notify(EventMined, genesis)

	return bc, nil
}

func (bc *Blockchain) AddBlock(txs Transactions) error {
	return bc.AddBlockContext(context.Background(), txs)
}

// AddBlockContext mines a block on top of the current tip and appends it. The
// search runs without holding the chain lock; if the tip moved or was
// tampered with meanwhile, the block is rebuilt on the new tip and mined
// again. The chain is unchanged if mining fails.
func (bc *Blockchain) AddBlockContext(ctx context.Context, txs Transactions) error {
	for {
		tip, prevHash, index := bc.tip()
		b := newBlockAt(index, txs, prevHash, bc.difficulty, bc.clock().Unix())
		if err := bc.miner.Mine(ctx, b); err != nil {
			return err
		}

		if bc.appendOnTip(b, tip, prevHash) {
			return nil
		}
		log.Warnf("Tip changed while mining block %d, mining again", index)
	}
}

func (bc *Blockchain) tip() (*Block, string, uint64) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	tip := bc.chain[len(bc.chain)-1]
	return tip, tip.hash, uint64(len(bc.chain))
}

// appendOnTip appends b only if tip is still the last block and still
// carries prevHash.
func (bc *Blockchain) appendOnTip(b, tip *Block, prevHash string) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.chain[len(bc.chain)-1] != tip || tip.hash != prevHash {
		return false
	}
	bc.chain = append(bc.chain, b)
	bc.notify(EventMined, b)
	return true
}

// ValidateChain reports whether every block links to its predecessor and
// still hashes to its stored hash.
func (bc *Blockchain) ValidateChain() bool {
	return bc.Verify() == nil
}

// Verify is ValidateChain with the reason for the first failure. The genesis
// block is not checked against anything and difficulty is not re-checked;
// see CheckProofOfWork for that.
func (bc *Blockchain) Verify() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	for i := 1; i < len(bc.chain); i++ {
		current := bc.chain[i]
		previous := bc.chain[i-1]

		if current.prevHash != previous.hash {
			return fmt.Errorf("block %d: %w: expected %s, got %s", i, ErrBrokenLink, previous.hash, current.prevHash)
		}
		if expected := current.GenerateHash(); current.hash != expected {
			return fmt.Errorf("block %d: %w: expected %s, got %s", i, ErrHashMismatch, expected, current.hash)
		}
	}
	return nil
}

// CheckProofOfWork checks that every block, genesis included, carries a hash
// meeting its difficulty.
func (bc *Blockchain) CheckProofOfWork() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	for i, b := range bc.chain {
		if !b.IsSealed() {
			return fmt.Errorf("block %d: %w %d: %s", i, ErrInsufficientWork, b.difficulty, b.hash)
		}
	}
	return nil
}

// TamperBlock overwrites the payload of the block at index and reseals it
// without mining. An out-of-range index leaves the chain untouched.
func (bc *Blockchain) TamperBlock(index int, txs Transactions) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if index < 0 || index >= len(bc.chain) {
		log.Warn("Invalid block index!")
		return fmt.Errorf("%w: %d (chain length %d)", ErrIndexOutOfRange, index, len(bc.chain))
	}

	b := bc.chain[index]
	b.setTransactions(txs)
	log.Infof("Block %d has been tampered.", index)
	bc.notify(EventTampered, b)
	return nil
}

func (bc *Blockchain) DisplayChain(w io.Writer) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	sep := separatorStyle.Render(strings.Repeat("-", 30))
	for _, b := range bc.chain {
		fmt.Fprintln(w, sep)
		b.DisplayBlock(w)
	}
}

func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.chain)
}

func (bc *Blockchain) Difficulty() int {
	return bc.difficulty
}

func (bc *Blockchain) Block(index int) (*Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if index < 0 || index >= len(bc.chain) {
		return nil, fmt.Errorf("%w: %d (chain length %d)", ErrIndexOutOfRange, index, len(bc.chain))
	}
	return bc.chain[index], nil
}

func (bc *Blockchain) Latest() *Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.chain[len(bc.chain)-1]
}

// Blocks returns the blocks in chain order. The slice is a copy; the blocks
// are shared.
func (bc *Blockchain) Blocks() []*Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	blocks := make([]*Block, len(bc.chain))
	copy(blocks, bc.chain)
	return blocks
}

func (bc *Blockchain) notify(kind EventKind, b *Block) {
	if bc.events != nil {
		bc.events.Send(newBlockEvent(kind, b))
	}
}
