package genomecache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/db"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
)

type mockFetcher struct {
	genome *genome.Genome
	err    error
	calls  int
}

func (m *mockFetcher) Fetch(_ context.Context, _ string, _ genome.Detail) (*genome.Genome, error) {
	m.calls++
	return m.genome, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedFetcher(t *testing.T, inner *mockFetcher) (*CachedFetcher, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cf := New(inner, ms, time.Hour, nil, zap.NewNop())
	return cf, ms
}

func testGenome() *genome.Genome {
	return genome.Reconstruct("83333.1", "Escherichia coli",
		[]genome.Contig{genome.NewContig("c1", "ACGT")}, nil, nil)
}
