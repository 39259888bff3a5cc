package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sheet is a decoded tabular file: one header row plus string cells.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Options controls how a tabular file is decoded.
type Options struct {
	// Encoding for delimited text. Empty means Latin1.
	Encoding Encoding
	// Delimiter for text files. If 0, picked from the file extension.
	Delimiter rune
	// XLSX sheet selection; SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions matches the clinical export format.
func DefaultOptions() Options {
	return Options{Encoding: Latin1, SheetIndex: 1}
}

// Parser decodes one tabular file format.
type Parser interface {
	CanParse(filename string) bool
	Parse(r io.Reader, name string, opt Options) (*Sheet, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported dataset format")

// ReadFile opens path and decodes it with the parser matching its extension.
func ReadFile(path string, opt Options) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path), opt)
}

// Read decodes r, choosing a parser by name.
func Read(r io.Reader, name string, opt Options) (*Sheet, error) {
	for _, p := range registry {
		if p.CanParse(name) {
			sh, err := p.Parse(r, name, opt)
			if err != nil {
				return nil, err
			}
			if sh.Name == "" {
				sh.Name = name
			}
			return sh, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}
