// Package repgen loads a representative-genome database: a YAML manifest
// pointing at a FASTA file of seed proteins, one per representative.
package repgen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/kmers"
	"github.com/kailas-cloud/hammersynth/internal/domain/match"
)

// Manifest is the on-disk description of a database.
type Manifest struct {
	KmerSize  int    `yaml:"kmer_size"`
	Threshold int    `yaml:"threshold"`
	Proteins  string `yaml:"proteins"`
}

// Entry is one representative genome.
type Entry struct {
	id    string
	name  string
	kmers *kmers.Set
}

// ID returns the representative genome ID.
func (e Entry) ID() string { return e.id }

// Name returns the representative genome name.
func (e Entry) Name() string { return e.name }

// Kmers returns the seed-protein k-mer set.
func (e Entry) Kmers() *kmers.Set { return e.kmers }

// Database is an immutable, in-memory representative set.
type Database struct {
	path      string
	k         int
	threshold int
	entries   []Entry
}

// Load reads the manifest at path and the protein FASTA it names.
// A relative protein path is resolved against the manifest directory.
func Load(path string) (*Database, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repgen manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse repgen manifest %s: %w", path, err)
	}
	if m.Proteins == "" {
		return nil, domain.NewConfigError("repgen", path+": proteins file not set")
	}
	if m.KmerSize <= 0 {
		m.KmerSize = kmers.DefaultK
	}
	if m.Threshold < 0 {
		return nil, domain.NewConfigError("repgen", path+": negative threshold")
	}

	protPath := m.Proteins
	if !filepath.IsAbs(protPath) {
		protPath = filepath.Join(filepath.Dir(path), protPath)
	}
	entries, err := readProteins(protPath, m.KmerSize)
	if err != nil {
		return nil, err
	}

	return &Database{path: path, k: m.KmerSize, threshold: m.Threshold, entries: entries}, nil
}

// New builds a database from already computed entries.
func New(k, threshold int, entries []Entry) *Database {
	return &Database{k: k, threshold: threshold, entries: entries}
}

// NewEntry creates an entry from a seed protein.
func NewEntry(id, name, protein string, k int) Entry {
	return Entry{id: id, name: name, kmers: kmers.New(protein, k)}
}

func readProteins(path string, k int) ([]Entry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("repgen proteins %s: %w", path, err)
	}
	reader, err := fastx.NewReader(seq.Protein, path, fastx.DefaultIDRegexp)
	if err != nil {
		return nil, fmt.Errorf("open repgen proteins %s: %w", path, err)
	}
	defer reader.Close()

	var entries []Entry
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read repgen proteins %s: %w", path, err)
		}
		id := string(record.ID)
		name := strings.TrimSpace(strings.TrimPrefix(string(record.Name), id))
		entries = append(entries, NewEntry(id, name, string(record.Seq.Seq), k))
	}
	return entries, nil
}

// Path returns the manifest path, empty for in-memory databases.
func (d *Database) Path() string { return d.path }

// K returns the k-mer length.
func (d *Database) K() int { return d.k }

// Threshold returns the minimum similarity for an acceptable match.
func (d *Database) Threshold() int { return d.threshold }

// Size returns the number of representatives.
func (d *Database) Size() int { return len(d.entries) }

// Closest returns the representative sharing the most k-mers with seed.
// Ties keep the earlier entry; an empty database yields match.None().
func (d *Database) Closest(seed string) match.Result {
	if len(d.entries) == 0 {
		return match.None()
	}
	probe := kmers.New(seed, d.k)
	best, bestSim := 0, -1
	for i, e := range d.entries {
		if sim := probe.Similarity(e.kmers); sim > bestSim {
			best, bestSim = i, sim
		}
	}
	e := d.entries[best]
	dist := kmers.DistanceFor(bestSim, probe.Size(), e.kmers.Size())
	return match.New(e.id, e.name, bestSim, dist, bestSim >= d.threshold)
}
