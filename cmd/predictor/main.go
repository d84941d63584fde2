package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/tweet-likes-predictor/internal/app"
	"github.com/samvad-hq/tweet-likes-predictor/internal/config"
	"github.com/samvad-hq/tweet-likes-predictor/internal/logger"
	"github.com/samvad-hq/tweet-likes-predictor/internal/ui"
	flag "github.com/spf13/pflag"
)

const maxInputBytes = 1 << 20

// errPredictionFailed marks a one-shot run whose error panel was already rendered.
var errPredictionFailed = errors.New("prediction failed")

func main() {
	if err := run(); err != nil {
		if errors.Is(err, errPredictionFailed) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "predictor failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	text := flag.StringP("text", "t", "", "tweet text to score once and exit")
	history := flag.IntP("history", "n", 0, "print the N most recent predictions and exit")
	debugConfig := flag.Bool("debug-config", false, "print which endpoint settings are configured")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	predictor, err := app.NewPredictor(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize predictor", "error", err)
		return err
	}
	defer func() {
		if err := predictor.Close(); err != nil {
			logger.WarnObj("predictor close failed", "error", err)
		}
	}()

	if *debugConfig {
		if err := ui.RenderConfigStatus(os.Stdout, predictor.ConfigStatus()); err != nil {
			return err
		}
	}

	switch {
	case *history > 0:
		recs, err := predictor.History(*history)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		return ui.RenderHistory(os.Stdout, recs)
	case flag.CommandLine.Changed("text"):
		outcome := predictor.Submit(ctx, *text)
		if err := ui.RenderText(os.Stdout, ui.NewPanel(outcome)); err != nil {
			return err
		}
		if !outcome.OK() {
			return errPredictionFailed
		}
		return nil
	default:
		return interactive(ctx, predictor, os.Stdin, os.Stdout)
	}
}

// interactive treats every input line as one trigger action until EOF or interrupt.
// Lines are read on their own goroutine so an interrupt at the prompt returns at once.
func interactive(ctx context.Context, predictor *app.Predictor, in io.Reader, out io.Writer) error {
	logger.InfoObj("interactive session started", "session", map[string]any{"input": "stdin"})

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 4096), maxInputBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, "Tweet text> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-readErr
			}
			if err := ui.RenderText(out, ui.NewPanel(predictor.Submit(ctx, line))); err != nil {
				return err
			}
		}
	}
}
