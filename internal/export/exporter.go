package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"crosspool/internal/model"
	"crosspool/internal/storage"
)

// EventWriter is the destination for exported events.
type EventWriter interface {
	InsertEvents(ctx context.Context, events []model.PoolEvent) error
}

// Config controls exporter behavior.
type Config struct {
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	StateStore   StateStore
}

// Exporter streams pool events from a JSONL file into an event writer,
// resuming from the last exported sequence number.
type Exporter struct {
	cfg    Config
	writer EventWriter
	logger *zap.Logger
}

func NewExporter(cfg Config, writer EventWriter, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{cfg: cfg, writer: writer, logger: logger}
}

// Run exports the events in the given JSONL file.
func (e *Exporter) Run(ctx context.Context, inputPath string) error {
	if e.writer == nil {
		return fmt.Errorf("event writer is nil")
	}
	if e.cfg.BatchSize <= 0 {
		e.cfg.BatchSize = 1000
	}

	var lastExported uint64
	if e.cfg.StateStore != nil {
		seq, ok, err := e.cfg.StateStore.Load(ctx)
		if err != nil {
			return err
		}
		if ok {
			lastExported = seq
			e.logger.Info("resume from state", zap.Uint64("last_exported_seq", lastExported))
		}
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	batch := make([]model.PoolEvent, 0, e.cfg.BatchSize)
	var total, exported, skipped, failed int

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var event model.PoolEvent
		if err := json.Unmarshal(line, &event); err != nil {
			failed++
			e.logger.Warn("decode event", zap.Error(err))
			continue
		}

		if event.Seq <= lastExported {
			skipped++
			continue
		}

		batch = append(batch, event)
		if len(batch) >= e.cfg.BatchSize {
			if err := e.flush(ctx, batch); err != nil {
				return err
			}
			lastExported = batch[len(batch)-1].Seq
			exported += len(batch)
			batch = batch[:0]

			if err := e.saveState(ctx, lastExported); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	if len(batch) > 0 {
		if err := e.flush(ctx, batch); err != nil {
			return err
		}
		lastExported = batch[len(batch)-1].Seq
		exported += len(batch)

		if err := e.saveState(ctx, lastExported); err != nil {
			return err
		}
	}

	e.logger.Info("export complete",
		zap.Int("total", total),
		zap.Int("exported", exported),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	return nil
}

func (e *Exporter) flush(ctx context.Context, batch []model.PoolEvent) error {
	return storage.WithRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryBackoff, func(ctx context.Context) error {
		if err := e.writer.InsertEvents(ctx, batch); err != nil {
			e.logger.Warn("insert events failed", zap.Error(err), zap.Int("batch", len(batch)))
			return err
		}
		return nil
	})
}

func (e *Exporter) saveState(ctx context.Context, seq uint64) error {
	if e.cfg.StateStore == nil {
		return nil
	}
	return e.cfg.StateStore.Save(ctx, seq)
}
