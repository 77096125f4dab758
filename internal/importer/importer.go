// Package importer reads uploaded ledger files for a tenant.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/recon/internal/journal"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/tabular"
)

// Parser converts a ledger export into entries.
type Parser interface {
	Parse(r io.Reader) ([]model.LedgerEntry, error)
	Format() string
}

// LedgerParser reads the standard ledger layout in one table format.
type LedgerParser struct {
	format tabular.Format
}

// Format returns the parser name, which is also the file extension it reads.
func (p *LedgerParser) Format() string { return string(p.format) }

// Parse reads all entries.
func (p *LedgerParser) Parse(r io.Reader) ([]model.LedgerEntry, error) {
	return journal.ReadLedger(r, p.format)
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a ledger file in an import directory.
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

// ForPath returns the parser registered for the file's extension.
func (r *Registry) ForPath(path string) (Parser, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if p := r.Get(ext); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("no parser for %s", filepath.Base(path))
}

// ParseFile opens path and parses it with the parser for its extension.
func (r *Registry) ParseFile(path string) ([]model.LedgerEntry, error) {
	p, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	entries, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&LedgerParser{format: tabular.FormatCSV})
	r.Register(&LedgerParser{format: tabular.FormatXLSX})
	return r
}

// processedDir is the subdirectory of an import dir for consumed files.
const processedDir = "processed"

// Scan returns the files in dir that reg can parse, in name order.
// A missing dir holds no files.
func Scan(dir string, reg *Registry) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if _, err := reg.ForPath(e.Name()); err != nil {
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
	dstDir := filepath.Join(dir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(filepath.Join(dir, fileName), dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// FileSource serves ledger entries from a fixed list of files.
type FileSource struct {
	reg   *Registry
	paths []string
}

// NewFileSource reads the given files for every tenant.
func NewFileSource(reg *Registry, paths ...string) *FileSource {
	return &FileSource{reg: reg, paths: paths}
}

// Ledger concatenates the entries of every file in order. The window is
// applied by the caller.
func (s *FileSource) Ledger(ctx context.Context, _ string, _ model.Window) ([]model.LedgerEntry, error) {
	var all []model.LedgerEntry
	for _, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := s.reg.ParseFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}
