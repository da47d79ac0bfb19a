package gto

import (
	"encoding/json"

	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
)

// genomeDTO is the on-disk JSON form of a genome typed object. Members not
// named here are kept in extras and written back unchanged.
type genomeDTO struct {
	ID             string         `json:"id"`
	ScientificName string         `json:"scientific_name"`
	Contigs        []contigDTO    `json:"contigs"`
	Features       []featureDTO   `json:"features,omitempty"`
	Quality        map[string]any `json:"quality,omitempty"`

	extras genome.Extras
}

type contigDTO struct {
	ID  string `json:"id"`
	DNA string `json:"dna"`

	extras genome.Extras
}

type featureDTO struct {
	ID                 string `json:"id"`
	Type               string `json:"type,omitempty"`
	Function           string `json:"function,omitempty"`
	ProteinTranslation string `json:"protein_translation,omitempty"`

	extras genome.Extras
}

func (d *genomeDTO) UnmarshalJSON(data []byte) error {
	type plain genomeDTO
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	var err error
	d.extras, err = extraMembers(data, "id", "scientific_name", "contigs", "features", "quality")
	return err
}

func (d genomeDTO) MarshalJSON() ([]byte, error) {
	type plain genomeDTO
	return withMembers(plain(d), d.extras)
}

func (c *contigDTO) UnmarshalJSON(data []byte) error {
	type plain contigDTO
	if err := json.Unmarshal(data, (*plain)(c)); err != nil {
		return err
	}
	var err error
	c.extras, err = extraMembers(data, "id", "dna")
	return err
}

func (c contigDTO) MarshalJSON() ([]byte, error) {
	type plain contigDTO
	return withMembers(plain(c), c.extras)
}

func (f *featureDTO) UnmarshalJSON(data []byte) error {
	type plain featureDTO
	if err := json.Unmarshal(data, (*plain)(f)); err != nil {
		return err
	}
	var err error
	f.extras, err = extraMembers(data, "id", "type", "function", "protein_translation")
	return err
}

func (f featureDTO) MarshalJSON() ([]byte, error) {
	type plain featureDTO
	return withMembers(plain(f), f.extras)
}

// extraMembers returns the members of the JSON object data not listed in known.
func extraMembers(data []byte, known ...string) (genome.Extras, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	extras := make(genome.Extras, len(all))
	for k, v := range all {
		extras[k] = v
	}
	return extras, nil
}

// withMembers encodes v as a JSON object and adds extras it does not already define.
func withMembers(v any, extras genome.Extras) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extras) == 0 {
		return data, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, raw := range extras {
		if _, ok := all[k]; !ok {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}

func toDomain(d *genomeDTO) (*genome.Genome, error) {
	contigs := make([]genome.Contig, len(d.Contigs))
	for i, c := range d.Contigs {
		contigs[i] = genome.NewContig(c.ID, c.DNA).WithExtras(c.extras)
	}
	features := make([]genome.Feature, len(d.Features))
	for i, f := range d.Features {
		features[i] = genome.NewFeature(f.ID, f.Type, f.Function, f.ProteinTranslation).WithExtras(f.extras)
	}
	g, err := genome.New(d.ID, d.ScientificName, contigs, features, genome.Quality(d.Quality))
	if err != nil {
		return nil, err
	}
	return g.WithExtras(d.extras), nil
}

func fromDomain(g *genome.Genome) *genomeDTO {
	d := &genomeDTO{
		ID:             g.ID(),
		ScientificName: g.Name(),
		Contigs:        make([]contigDTO, len(g.Contigs())),
		Features:       make([]featureDTO, len(g.Features())),
		Quality:        g.Quality(),
		extras:         g.Extras(),
	}
	for i, c := range g.Contigs() {
		d.Contigs[i] = contigDTO{ID: c.ID(), DNA: c.Sequence(), extras: c.Extras()}
	}
	for i, f := range g.Features() {
		d.Features[i] = featureDTO{
			ID:                 f.ID(),
			Type:               f.Kind(),
			Function:           f.Function(),
			ProteinTranslation: f.Translation(),
			extras:             f.Extras(),
		}
	}
	return d
}
