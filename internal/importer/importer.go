package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// Parser converts a card export CSV into Transactions for an account.
type Parser interface {
	Parse(r io.Reader, accountID string) ([]model.Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseCardParser{})
	return r
}

// processedDir is the subdirectory for processed CSVs.
const processedDir = "processed"

// Scan returns CSV files in dir, skipping subdirectories.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from dir to dir/processed/.
func MarkProcessed(dir, fileName string) error {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// TransactionSink persists imported transactions.
type TransactionSink interface {
	SaveTransaction(ctx context.Context, tx model.Transaction) error
}

// MatchTrigger is the real-time match path invoked per imported
// transaction.
type MatchTrigger interface {
	Process(ctx context.Context, tx model.Transaction) (bool, error)
}

// Summary reports one import run.
type Summary struct {
	Files    int
	Imported int
	Matched  int
}

// Importer parses card CSV exports, persists the transactions, and
// feeds each one through the real-time match trigger.
type Importer struct {
	registry *Registry
	sink     TransactionSink
	trigger  MatchTrigger
	log      zerolog.Logger
}

// NewImporter creates an Importer.
func NewImporter(registry *Registry, sink TransactionSink, trigger MatchTrigger, log zerolog.Logger) *Importer {
	return &Importer{registry: registry, sink: sink, trigger: trigger, log: log}
}

// ImportDir imports every CSV in dir using the named parser format,
// attributing transactions to accountID, and moves finished files to
// processed/. A failed match decision does not block the import; the
// transaction stays unmatched and the backfill scan picks it up.
func (i *Importer) ImportDir(ctx context.Context, dir, format, accountID string) (Summary, error) {
	parser := i.registry.Get(format)
	if parser == nil {
		return Summary{}, fmt.Errorf("unknown import format %q", format)
	}

	files, err := Scan(dir)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, file := range files {
		n, matched, err := i.importFile(ctx, parser, file, accountID)
		if err != nil {
			return summary, fmt.Errorf("importing %s: %w", file.Name, err)
		}
		if err := MarkProcessed(dir, file.Name); err != nil {
			return summary, err
		}
		summary.Files++
		summary.Imported += n
		summary.Matched += matched
	}
	return summary, nil
}

func (i *Importer) importFile(ctx context.Context, parser Parser, file FileInfo, accountID string) (imported, matched int, err error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening %s: %w", file.Path, err)
	}
	defer f.Close()

	txs, err := parser.Parse(f, accountID)
	if err != nil {
		return 0, 0, err
	}

	for _, tx := range txs {
		if err := i.sink.SaveTransaction(ctx, tx); err != nil {
			return imported, matched, err
		}
		imported++

		hit, err := i.trigger.Process(ctx, tx)
		if err != nil {
			i.log.Error().Err(err).
				Str("transaction_id", tx.ID).
				Msg("match trigger failed; transaction left for backfill")
			continue
		}
		if hit {
			matched++
		}
	}
	return imported, matched, nil
}
