package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shu8h0-null/powledger/core/blockchain"
	"github.com/shu8h0-null/powledger/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	blockchain.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRunDemoReportsTampering(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()

	require.NoError(t, runDemo(context.Background(), &out, cfg, false))

	s := out.String()
	before, after, found := strings.Cut(s, "--- Blockchain After Tampering ---")
	require.True(t, found)

	assert.Contains(t, before, "Is the blockchain valid? true")
	assert.Contains(t, after, "Is the blockchain valid? false")
	assert.Contains(t, before, "['Alice sent 1 BTC to Bob']")
	assert.Contains(t, after, "['Tampered transaction']")
	assert.Equal(t, 4, strings.Count(before, "Block Index:"))
}

func TestRunDemoDump(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	cfg.Difficulty = 1

	require.NoError(t, runDemo(context.Background(), &out, cfg, true))
	assert.Contains(t, out.String(), "blockchain.Block")
}

func TestRunDemoParallelWorkers(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	cfg.Workers = 4

	require.NoError(t, runDemo(context.Background(), &out, cfg, false))
	assert.Contains(t, out.String(), "Is the blockchain valid? false")
}

func TestDemoCommandFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0600))

	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), []string{"ledger", "--config", path, "--difficulty", "1", "demo"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Is the blockchain valid? true")
}

func TestInvalidDifficultyFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	err := newApp(io.Discard).Run(context.Background(), []string{"ledger", "--config", path, "--difficulty", "0", "demo"})
	assert.ErrorIs(t, err, config.ErrInvalidDifficulty)
}

func TestNegativeMaxAttemptsFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	err := newApp(io.Discard).Run(context.Background(), []string{"ledger", "--config", path, "--max-attempts=-5", "demo"})
	assert.Error(t, err)
}

func TestDemoStopsWhenAttemptsRunOut(t *testing.T) {
	cfg := config.Default()
	cfg.Difficulty = 3
	cfg.MaxAttempts = 1

	err := runDemo(context.Background(), io.Discard, cfg, false)
	assert.ErrorIs(t, err, blockchain.ErrMaxAttemptsExceeded)
}
