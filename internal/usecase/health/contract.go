package health

import "context"

// CachePinger checks fetch-cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// RepositoryChecker checks genome repository availability.
type RepositoryChecker interface {
	HealthCheck(ctx context.Context) error
}
