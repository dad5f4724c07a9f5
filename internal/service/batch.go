package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"docforge/internal/domain"
)

// BatchService runs independent generations concurrently over a bounded
// worker pool and packs the outputs into a single zip archive. Items are
// fully isolated: one failing item never aborts or degrades its siblings,
// and a failed item is reported, not retried.
type BatchService struct {
	generator domain.Generator
	workers   int
	logger    domain.Logger
}

func NewBatchService(generator domain.Generator, workers int, logger domain.Logger) *BatchService {
	if workers < 1 {
		workers = 1
	}
	return &BatchService{
		generator: generator,
		workers:   workers,
		logger:    logger,
	}
}

type batchOutcome struct {
	index    int
	filename string
	data     []byte
	err      error
}

// Run generates every item and returns the archive. Outputs keep the order
// of their items regardless of completion order. Failures are collected in
// the result and additionally written to a report.json archive entry.
func (s *BatchService) Run(ctx context.Context, items []domain.BatchItem) (*domain.BatchResult, error) {
	if len(items) == 0 {
		return nil, &domain.SpecValidationError{Path: "items", Message: "batch is empty"}
	}

	jobs := make(chan int, len(items))
	outcomes := make([]batchOutcome, len(items))
	var wg sync.WaitGroup

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.runOne(ctx, i, items[i])
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := &domain.BatchResult{}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := map[string]int{}

	for _, oc := range outcomes {
		if oc.err != nil {
			result.Failed = append(result.Failed, &domain.BatchItemError{Filename: oc.filename, Err: oc.err})
			s.logger.Warn("batch item failed", "filename", oc.filename, "error", oc.err.Error())
			continue
		}
		name := dedupeName(oc.filename, used)
		f, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating archive entry %q: %w", name, err)
		}
		if _, err := f.Write(oc.data); err != nil {
			return nil, fmt.Errorf("writing archive entry %q: %w", name, err)
		}
		result.Succeeded = append(result.Succeeded, name)
	}

	if len(result.Failed) > 0 {
		if err := writeBatchReport(zw, result.Failed); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	result.Archive = buf.Bytes()
	s.logger.Info("batch finished",
		"items", len(items),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed))
	return result, nil
}

func (s *BatchService) runOne(ctx context.Context, index int, item domain.BatchItem) batchOutcome {
	oc := batchOutcome{index: index, filename: item.Filename}
	if oc.filename == "" {
		oc.filename = fmt.Sprintf("document-%d.docx", index+1)
	}

	spec, err := NormalizeSpecification(item.Spec)
	if err != nil {
		oc.err = err
		return oc
	}
	out, err := s.generator.GenerateSpec(ctx, spec, domain.GenerateOptions{})
	if err != nil {
		oc.err = err
		return oc
	}
	if item.Filename == "" {
		oc.filename = out.Filename
	}
	oc.data = out.Data
	return oc
}

// batchReportEntry is one line of the report.json entry written alongside
// successful outputs when any item failed.
type batchReportEntry struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

func writeBatchReport(zw *zip.Writer, failed []*domain.BatchItemError) error {
	entries := make([]batchReportEntry, len(failed))
	for i, f := range failed {
		entries[i] = batchReportEntry{Filename: f.Filename, Error: f.Err.Error()}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Filename < entries[j].Filename })

	w, err := zw.Create("report.json")
	if err != nil {
		return fmt.Errorf("creating batch report: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"failed": entries}); err != nil {
		return fmt.Errorf("writing batch report: %w", err)
	}
	return nil
}

// dedupeName makes duplicate archive filenames unique by suffixing a
// counter before the extension.
func dedupeName(name string, used map[string]int) string {
	n, seen := used[name]
	used[name] = n + 1
	if !seen {
		return name
	}
	ext := ""
	base := name
	if dot := strings.LastIndex(name, "."); dot > 0 {
		base, ext = name[:dot], name[dot:]
	}
	return fmt.Sprintf("%s-%d%s", base, n+1, ext)
}
