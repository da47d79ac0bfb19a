// Package gto reads and writes genome typed object (GTO) JSON files and scans
// directories for them.
package gto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/shenwei356/xopen"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
)

// Extension is the file suffix of cached genomes.
const Extension = ".gto"

var (
	binFileRegex    = regexp.MustCompile(`^bin\.\d+\.\d+\.gto$`)
	patricJSONRegex = regexp.MustCompile(`^\d+\.\d+\.json$`)
)

// Filter selects directory entries by file name.
type Filter func(name string) bool

// BinFileFilter accepts binning-run output genomes (bin.<n>.<n>.gto).
func BinFileFilter(name string) bool { return binFileRegex.MatchString(name) }

// GenomeFileFilter accepts any GTO file or a PATRIC-style <taxon>.<n>.json genome.
func GenomeFileFilter(name string) bool {
	return strings.HasSuffix(name, Extension) || patricJSONRegex.MatchString(name)
}

// CacheFileFilter accepts cached genome files (*.gto).
func CacheFileFilter(name string) bool { return strings.HasSuffix(name, Extension) }

// Load reads a genome from a GTO file. Gzipped files are accepted.
func Load(path string) (*genome.Genome, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, domain.ErrGenomeNotFound)
		}
		if errors.Is(err, xopen.ErrNoContent) {
			return nil, fmt.Errorf("open %s: %w", path, domain.ErrMalformedRecord)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	var d genomeDTO
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", path, domain.ErrMalformedRecord, err)
	}
	g, err := toDomain(&d)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", path, domain.ErrMalformedRecord, err)
	}
	return g, nil
}

// Save writes a genome to a GTO file.
func Save(g *genome.Genome, path string) (err error) {
	w, err := xopen.Wopen(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	enc := json.NewEncoder(w)
	if err := enc.Encode(fromDomain(g)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// SaveToDir writes a genome to <dir>/<genomeID>.gto and returns the path.
func SaveToDir(g *genome.Genome, dir string) (string, error) {
	path := filepath.Join(dir, g.ID()+Extension)
	return path, Save(g, path)
}

// Marshal encodes a genome as GTO JSON.
func Marshal(g *genome.Genome) ([]byte, error) {
	return json.Marshal(fromDomain(g))
}

// Unmarshal decodes GTO JSON into a genome.
func Unmarshal(data []byte) (*genome.Genome, error) {
	var d genomeDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}
	return toDomain(&d)
}

// Subdirs returns the immediate subdirectories of root in lexical order.
func Subdirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(root, e.Name()))
		}
	}
	return out, nil
}

// List returns the regular files in dir accepted by filter, in lexical order.
func List(dir string, filter Filter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !filter(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	slices.Sort(out)
	return out, nil
}

// EnsureDir creates dir when missing. With clear set, existing contents are removed.
func EnsureDir(dir string, clear bool) (created bool, err error) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return false, fmt.Errorf("mkdir %s: %w", dir, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("stat %s: %w", dir, err)
	case !info.IsDir():
		return false, fmt.Errorf("%s is not a directory", dir)
	}
	if !clear {
		return false, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return false, fmt.Errorf("clear %s: %w", dir, err)
		}
	}
	return false, nil
}
