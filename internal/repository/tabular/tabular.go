// Package tabular reads tab-delimited files with a header line, giving
// column-name indexed access and typed accessors.
package tabular

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shenwei356/xopen"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
)

// Reader streams rows from a tab-delimited file.
type Reader struct {
	src    *bufio.Reader
	closer io.Closer
	header []string
	index  map[string]int
	line   int
}

// Open opens a file ("-" for stdin, compressed files are detected) and reads its header.
func Open(path string) (*Reader, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r, err := newReader(fh.Reader, fh)
	if err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r, nil
}

// NewReader wraps an io.Reader and reads the header line.
func NewReader(src io.Reader) (*Reader, error) {
	return newReader(bufio.NewReader(src), nil)
}

func newReader(src *bufio.Reader, closer io.Closer) (*Reader, error) {
	r := &Reader{src: src, closer: closer}
	fields, err := r.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header line: %w", domain.ErrMalformedRecord)
		}
		return nil, err
	}
	r.header = fields
	r.index = make(map[string]int, len(fields))
	for i, name := range fields {
		if _, dup := r.index[name]; !dup {
			r.index[name] = i
		}
	}
	return r, nil
}

// Header returns the column names.
func (r *Reader) Header() []string { return r.header }

// Column returns the index of a named column.
func (r *Reader) Column(name string) (int, error) {
	if i, ok := r.index[name]; ok {
		return i, nil
	}
	return -1, fmt.Errorf("column %q not found: %w", name, domain.ErrMalformedRecord)
}

// FindColumn returns the index of the first column matching any of the names.
func (r *Reader) FindColumn(names ...string) (int, error) {
	for _, name := range names {
		if i, ok := r.index[name]; ok {
			return i, nil
		}
	}
	return -1, fmt.Errorf("none of columns %q found: %w", names, domain.ErrMalformedRecord)
}

// Next returns the next data row, or io.EOF after the last one. Blank lines are skipped.
func (r *Reader) Next() (Row, error) {
	for {
		fields, err := r.readLine()
		if err != nil {
			return Row{}, err
		}
		if len(fields) == 1 && fields[0] == "" {
			continue
		}
		return Row{fields: fields, line: r.line}, nil
	}
}

// Line returns the number of lines consumed, header included.
func (r *Reader) Line() int { return r.line }

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) readLine() ([]string, error) {
	text, err := r.src.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	if errors.Is(err, io.EOF) && text == "" {
		return nil, io.EOF
	}
	r.line++
	text = strings.TrimRight(text, "\r\n")
	return strings.Split(text, "\t"), nil
}

// Row is one data line.
type Row struct {
	fields []string
	line   int
}

// Line returns the 1-based line number in the file.
func (r Row) Line() int { return r.line }

// Len returns the number of fields.
func (r Row) Len() int { return len(r.fields) }

// String returns field i, or "" when the row is short.
func (r Row) String(i int) string {
	if i < 0 || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// Float parses field i as a number.
func (r Row) Float(i int) (float64, error) {
	s := strings.TrimSpace(r.String(i))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d column %d: %q: %w", r.line, i+1, s, domain.ErrMalformedRecord)
	}
	return v, nil
}

// Flag parses field i as a boolean flag (1/0, Y/N, true/false, ...).
// The second result is false when the value is not a recognised flag.
func (r Row) Flag(i int) (bool, bool) {
	if i < 0 || i >= len(r.fields) {
		return false, false
	}
	return genome.ParseFlag(r.fields[i])
}
