package genome

import "context"

// Detail selects how much of a genome a remote fetch retrieves.
type Detail string

const (
	// DetailContigs retrieves identity and DNA contigs only.
	DetailContigs Detail = "contigs"
	// DetailFull also retrieves protein features and quality data.
	DetailFull Detail = "full"
)

// Fetcher downloads genomes by ID. A genome that does not exist is
// reported as domain.ErrGenomeNotFound.
type Fetcher interface {
	Fetch(ctx context.Context, id string, detail Detail) (*Genome, error)
}
