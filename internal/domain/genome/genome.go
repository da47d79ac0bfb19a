package genome

import "fmt"

// Extras holds record attributes this package does not interpret, keyed by
// field name with encoded values. They are kept so a stored genome can be
// written back without loss.
type Extras map[string][]byte

// Contig is one assembled DNA sequence of a genome (immutable value object).
type Contig struct {
	id       string
	sequence string
	extras   Extras
}

// NewContig creates a contig.
func NewContig(id, sequence string) Contig {
	return Contig{id: id, sequence: sequence}
}

// ID returns the contig identifier.
func (c Contig) ID() string { return c.id }

// Sequence returns the raw nucleotide sequence.
func (c Contig) Sequence() string { return c.sequence }

// Len returns the sequence length in base pairs.
func (c Contig) Len() int { return len(c.sequence) }

// Extras returns attributes carried over from the source record.
func (c Contig) Extras() Extras { return c.extras }

// WithExtras returns a copy of c carrying extras.
func (c Contig) WithExtras(extras Extras) Contig {
	c.extras = extras
	return c
}

// Feature is an annotated feature of a genome.
type Feature struct {
	id          string
	kind        string
	function    string
	translation string
	extras      Extras
}

// NewFeature creates a feature. translation is empty for non-coding features.
func NewFeature(id, kind, function, translation string) Feature {
	return Feature{id: id, kind: kind, function: function, translation: translation}
}

// ID returns the feature identifier.
func (f Feature) ID() string { return f.id }

// Kind returns the feature type (CDS, peg, rna, ...).
func (f Feature) Kind() string { return f.kind }

// Function returns the assigned functional role.
func (f Feature) Function() string { return f.function }

// Translation returns the protein translation.
func (f Feature) Translation() string { return f.translation }

// Extras returns attributes carried over from the source record.
func (f Feature) Extras() Extras { return f.extras }

// WithExtras returns a copy of f carrying extras.
func (f Feature) WithExtras(extras Extras) Feature {
	f.extras = extras
	return f
}

// Genome is a read-only genome record.
type Genome struct {
	id       string
	name     string
	contigs  []Contig
	features []Feature
	quality  Quality
	extras   Extras
}

// New validates and creates a Genome.
func New(id, name string, contigs []Contig, features []Feature, quality Quality) (*Genome, error) {
	if id == "" {
		return nil, fmt.Errorf("genome ID is required")
	}
	return Reconstruct(id, name, contigs, features, quality), nil
}

// Reconstruct creates a Genome without validation (storage hydration).
func Reconstruct(id, name string, contigs []Contig, features []Feature, quality Quality) *Genome {
	if quality == nil {
		quality = Quality{}
	}
	return &Genome{id: id, name: name, contigs: contigs, features: features, quality: quality}
}

// ID returns the genome identifier.
func (g *Genome) ID() string { return g.id }

// Name returns the scientific name.
func (g *Genome) Name() string { return g.name }

// Contigs returns the contigs in file order.
func (g *Genome) Contigs() []Contig { return g.contigs }

// Features returns the annotated features.
func (g *Genome) Features() []Feature { return g.features }

// Quality returns the quality-metadata bag.
func (g *Genome) Quality() Quality { return g.quality }

// Extras returns attributes carried over from the source record.
func (g *Genome) Extras() Extras { return g.extras }

// WithExtras returns a copy of g carrying extras.
func (g *Genome) WithExtras(extras Extras) *Genome {
	c := *g
	c.extras = extras
	return &c
}

// String implements fmt.Stringer.
func (g *Genome) String() string {
	if g.name == "" {
		return g.id
	}
	return g.id + " (" + g.name + ")"
}
