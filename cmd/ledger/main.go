package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/shu8h0-null/powledger/core/blockchain"
	"github.com/shu8h0-null/powledger/core/config"
	"github.com/shu8h0-null/powledger/core/logger"
	"github.com/shu8h0-null/powledger/tui"
	"github.com/urfave/cli/v3"
)

const demoDifficulty = 3

var demoPayloads = []blockchain.Transactions{
	{"Alice sent 1 BTC to Bob"},
	{"Bob sent 0.5 BTC to Charlie"},
	{"Charlie sent 0.2 BTC to Dave"},
}

var log = logger.NewLogger()

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listenForQuitSignal(ctx, cancel)

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "tamper-evident proof-of-work ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.ConfigPath(),
				Usage: "path to the YAML config file",
			},
			&cli.IntFlag{
				Name:  "difficulty",
				Usage: "number of leading zeros every block hash needs",
			},
			&cli.IntFlag{
				Name:  "max-attempts",
				Usage: "upper bound on nonces tried per block (0 for unbounded)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "goroutines searching for a nonce",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "demo",
				Usage: "mine three blocks, tamper with one and validate before and after",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "dump the final chain structure",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					if !cmd.IsSet("difficulty") {
						cfg.Difficulty = demoDifficulty
					}
					return runDemo(ctx, out, cfg, cmd.Bool("dump"))
				},
			},
			{
				Name:  "explore",
				Usage: "browse, extend and tamper with a chain interactively",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					bc, err := newChain(cfg)
					if err != nil {
						return err
					}
					return tui.Run(bc)
				},
			},
		},
	}
}

// loadConfig reads the config file and lets flags that were set override it.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("difficulty") {
		cfg.Difficulty = int(cmd.Int("difficulty"))
	}
	if cmd.IsSet("max-attempts") {
		n := cmd.Int("max-attempts")
		if n < 0 {
			return config.Config{}, fmt.Errorf("max-attempts cannot be negative: got %d", n)
		}
		cfg.MaxAttempts = uint64(n)
	}
	if cmd.IsSet("workers") {
		cfg.Workers = int(cmd.Int("workers"))
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newChain(cfg config.Config, opts ...blockchain.Option) (*blockchain.Blockchain, error) {
	miner := blockchain.NewMiner(
		blockchain.WithMaxAttempts(cfg.MaxAttempts),
		blockchain.WithWorkers(cfg.Workers),
	)
	opts = append([]blockchain.Option{blockchain.WithMiner(miner)}, opts...)

	bc, err := blockchain.NewBlockchain(cfg.Difficulty, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create blockchain: %w", err)
	}
	return bc, nil
}

func runDemo(ctx context.Context, out io.Writer, cfg config.Config, dump bool) error {
	events := blockchain.NewEventFeed[blockchain.BlockEvent]()
	eventCh := make(chan blockchain.BlockEvent, len(demoPayloads)+2)
	if err := events.Subscribe("demo", eventCh); err != nil {
		return err
	}
	defer events.UnSubscribe("demo")

	log.Infof("Creating blockchain with difficulty %d", cfg.Difficulty)
	bc, err := newChain(cfg, blockchain.WithEvents(events))
	if err != nil {
		return err
	}

	for _, txs := range demoPayloads {
		if err := bc.AddBlockContext(ctx, txs); err != nil {
			return fmt.Errorf("adding block: %w", err)
		}
	}

	fmt.Fprintln(out, "\n--- Blockchain Before Tampering ---")
	bc.DisplayChain(out)
	reportValidity(out, bc)

	if err := bc.TamperBlock(1, blockchain.Transactions{"Tampered transaction"}); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Blockchain After Tampering ---")
	bc.DisplayChain(out)
	reportValidity(out, bc)

	mined, tampered := countEvents(eventCh)
	log.Infof("%d blocks mined, %d tampered", mined, tampered)

	if dump {
		fmt.Fprintln(out)
		spew.Fdump(out, bc.Blocks())
	}
	return nil
}

func reportValidity(out io.Writer, bc *blockchain.Blockchain) {
	err := bc.Verify()
	fmt.Fprintf(out, "\nIs the blockchain valid? %t\n", err == nil)

	switch {
	case err == nil:
		log.Success("Chain verified")
	case errors.Is(err, blockchain.ErrBrokenLink), errors.Is(err, blockchain.ErrHashMismatch):
		log.Warn(err)
	default:
		log.Error(err)
	}
}

func countEvents(ch <-chan blockchain.BlockEvent) (mined, tampered int) {
	for {
		select {
		case ev := <-ch:
			switch ev.Kind {
			case blockchain.EventMined:
				mined++
			case blockchain.EventTampered:
				tampered++
			}
		default:
			return mined, tampered
		}
	}
}

func listenForQuitSignal(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			log.Infof("Received signal: %s, shutting down...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
}
