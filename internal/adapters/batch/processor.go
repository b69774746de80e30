// Package batch classifies newline-delimited comments with a pool of workers and writes
// one JSON record per comment in input order.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/wire"
	"github.com/baditaflorin/go_comment_classifier/internal/ports"
)

// Constants for batch processing
const (
	// DefaultBatchSize is the number of lines handed to a worker at once
	DefaultBatchSize = 64

	// MaxJobQueueSize limits the number of pending jobs
	MaxJobQueueSize = 32

	// MaxLineSize is the longest accepted input line
	MaxLineSize = 1024 * 1024
)

// Record is the output for one input line.
type Record struct {
	Line    int                    `json:"line"`
	Comment string                 `json:"comment"`
	Result  *wire.ClassifyResponse `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Stats summarizes a batch run.
type Stats struct {
	Lines      int
	Classified int
	Failed     int
	Duration   time.Duration
}

type line struct {
	number int
	text   string
}

// lineJob represents a batch of lines to be classified by a worker
type lineJob struct {
	lines   []line
	chunkID int
}

// lineJobResult holds the records of one job
type lineJobResult struct {
	records []Record
	chunkID int
}

// Processor classifies comment streams.
type Processor struct {
	classifier ports.Classifier
	logger     ports.Logger
	workers    int
	batchSize  int
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers sets the number of worker goroutines; 0 means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithBatchSize sets the number of lines per job.
func WithBatchSize(n int) Option {
	return func(p *Processor) {
		p.batchSize = n
	}
}

// NewProcessor creates a new batch processor.
func NewProcessor(classifier ports.Classifier, logger ports.Logger, opts ...Option) *Processor {
	p := &Processor{
		classifier: classifier,
		logger:     logger,
		batchSize:  DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers <= 0 {
		p.workers = runtime.NumCPU()
	}
	if p.batchSize <= 0 {
		p.batchSize = DefaultBatchSize
	}
	return p
}

// Process reads comments from r, one per line, and writes one JSON record per
// non-blank line to w. Records keep input order. Per-comment failures are written
// as records with an error; read and write failures abort the run.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	startTime := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan lineJob, MaxJobQueueSize)
	results := make(chan lineJobResult, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.worker(ctx, jobs, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	readErr := make(chan error, 1)
	go func() {
		defer close(jobs)
		readErr <- p.readLines(ctx, r, jobs)
	}()

	stats, writeErr := p.writeInOrder(results, w)
	if writeErr != nil {
		cancel()
		// Drain so workers can exit.
		for range results {
		}
	}
	err := <-readErr
	stats.Duration = time.Since(startTime)

	if writeErr != nil {
		return stats, writeErr
	}
	if err != nil {
		return stats, err
	}

	p.logger.Info("Batch classification completed",
		"lines", stats.Lines,
		"classified", stats.Classified,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (p *Processor) readLines(ctx context.Context, r io.Reader, jobs chan<- lineJob) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var (
		chunkID int
		number  int
		pending = make([]line, 0, p.batchSize)
	)

	send := func() error {
		if len(pending) == 0 {
			return nil
		}
		select {
		case jobs <- lineJob{lines: pending, chunkID: chunkID}:
			chunkID++
			pending = make([]line, 0, p.batchSize)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for scanner.Scan() {
		number++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		pending = append(pending, line{number: number, text: text})
		if len(pending) >= p.batchSize {
			if err := send(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return send()
}

func (p *Processor) worker(ctx context.Context, jobs <-chan lineJob, results chan<- lineJobResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		records := make([]Record, len(job.lines))
		for i, ln := range job.lines {
			records[i] = Record{Line: ln.number, Comment: ln.text}
			resp, err := p.classifier.Classify(ctx, ln.text)
			if err != nil {
				records[i].Error = err.Error()
				continue
			}
			body := wire.NewClassifyResponse(resp)
			records[i].Result = &body
		}

		select {
		case results <- lineJobResult{records: records, chunkID: job.chunkID}:
		case <-ctx.Done():
			return
		}
	}
}

// writeInOrder buffers out-of-order results until their predecessors have been written.
func (p *Processor) writeInOrder(results <-chan lineJobResult, w io.Writer) (Stats, error) {
	var stats Stats
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	pending := make(map[int][]Record)
	next := 0
	for res := range results {
		pending[res.chunkID] = res.records
		for {
			records, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			for _, rec := range records {
				if err := enc.Encode(rec); err != nil {
					return stats, fmt.Errorf("failed to write record: %w", err)
				}
				stats.Lines++
				if rec.Error != "" {
					stats.Failed++
				} else {
					stats.Classified++
				}
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write output: %w", err)
	}
	return stats, nil
}
