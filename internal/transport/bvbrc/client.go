// Package bvbrc downloads genomes from the BV-BRC data API.
package bvbrc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/domain/quality"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
)

// DefaultBaseURL is the public data API endpoint.
const DefaultBaseURL = "https://www.bv-brc.org/api"

const (
	defaultPageSize = 25000
	md5Batch        = 200
)

// Config holds the client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	PageSize   int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client fetches genomes over HTTP. It implements genome.Fetcher.
type Client struct {
	http     *http.Client
	baseURL  string
	pageSize int
	logger   *zap.Logger
}

// NewClient creates a data API client.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: hc, baseURL: base, pageSize: pageSize, logger: logger}
}

type genomeRecord struct {
	GenomeID        string   `json:"genome_id"`
	GenomeName      string   `json:"genome_name"`
	GenomeQuality   string   `json:"genome_quality"`
	Completeness    *float64 `json:"checkm_completeness"`
	Contamination   *float64 `json:"checkm_contamination"`
	FineConsistency *float64 `json:"fine_consistency"`
	Hypothetical    *float64 `json:"hypothetical_cds_ratio"`
}

type sequenceRecord struct {
	Accession string `json:"accession"`
	Sequence  string `json:"sequence"`
}

type featureRecord struct {
	PatricID    string `json:"patric_id"`
	FeatureType string `json:"feature_type"`
	Product     string `json:"product"`
	AAMD5       string `json:"aa_sequence_md5"`
}

type translationRecord struct {
	MD5      string `json:"md5"`
	Sequence string `json:"sequence"`
}

// Fetch implements genome.Fetcher. Unknown genomes yield domain.ErrGenomeNotFound.
func (c *Client) Fetch(ctx context.Context, id string, detail genome.Detail) (*genome.Genome, error) {
	start := time.Now()
	g, err := c.fetch(ctx, id, detail)
	metrics.GenomeFetchDuration.WithLabelValues(string(detail)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenomeFetchErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return nil, err
	}
	c.logger.Debug("Genome fetched",
		zap.String("genome", id),
		zap.String("detail", string(detail)),
		zap.Int("contigs", len(g.Contigs())),
		zap.Int("features", len(g.Features())),
		zap.Duration("duration", time.Since(start)),
	)
	return g, nil
}

func (c *Client) fetch(ctx context.Context, id string, detail genome.Detail) (*genome.Genome, error) {
	var recs []genomeRecord
	q := fmt.Sprintf("eq(genome_id,%s)&select(genome_id,genome_name,genome_quality,"+
		"checkm_completeness,checkm_contamination,fine_consistency,hypothetical_cds_ratio)&limit(1)", rqlValue(id))
	if err := c.query(ctx, "genome", q, &recs); err != nil {
		return nil, fmt.Errorf("genome %s: %w", id, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("genome %s: %w", id, domain.ErrGenomeNotFound)
	}
	rec := recs[0]

	contigs, err := c.contigs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("genome %s contigs: %w", id, err)
	}

	var features []genome.Feature
	if detail == genome.DetailFull {
		if features, err = c.features(ctx, id); err != nil {
			return nil, fmt.Errorf("genome %s features: %w", id, err)
		}
	}

	return genome.New(rec.GenomeID, rec.GenomeName, contigs, features, qualityOf(rec))
}

func (c *Client) contigs(ctx context.Context, id string) ([]genome.Contig, error) {
	var contigs []genome.Contig
	for offset := 0; ; offset += c.pageSize {
		var page []sequenceRecord
		q := fmt.Sprintf("eq(genome_id,%s)&select(accession,sequence)&sort(+accession)&limit(%d,%d)",
			rqlValue(id), c.pageSize, offset)
		if err := c.query(ctx, "genome_sequence", q, &page); err != nil {
			return nil, err
		}
		for _, s := range page {
			contigs = append(contigs, genome.NewContig(s.Accession, s.Sequence))
		}
		if len(page) < c.pageSize {
			return contigs, nil
		}
	}
}

func (c *Client) features(ctx context.Context, id string) ([]genome.Feature, error) {
	var recs []featureRecord
	for offset := 0; ; offset += c.pageSize {
		var page []featureRecord
		q := fmt.Sprintf("eq(genome_id,%s)&eq(annotation,PATRIC)&select(patric_id,feature_type,product,aa_sequence_md5)"+
			"&limit(%d,%d)", rqlValue(id), c.pageSize, offset)
		if err := c.query(ctx, "genome_feature", q, &page); err != nil {
			return nil, err
		}
		recs = append(recs, page...)
		if len(page) < c.pageSize {
			break
		}
	}

	translations, err := c.translations(ctx, recs)
	if err != nil {
		return nil, err
	}

	features := make([]genome.Feature, 0, len(recs))
	for _, r := range recs {
		features = append(features, genome.NewFeature(r.PatricID, r.FeatureType, r.Product, translations[r.AAMD5]))
	}
	return features, nil
}

func (c *Client) translations(ctx context.Context, recs []featureRecord) (map[string]string, error) {
	seen := make(map[string]struct{})
	var md5s []string
	for _, r := range recs {
		if r.AAMD5 == "" {
			continue
		}
		if _, dup := seen[r.AAMD5]; !dup {
			seen[r.AAMD5] = struct{}{}
			md5s = append(md5s, r.AAMD5)
		}
	}

	out := make(map[string]string, len(md5s))
	for start := 0; start < len(md5s); start += md5Batch {
		batch := md5s[start:min(start+md5Batch, len(md5s))]
		var page []translationRecord
		q := fmt.Sprintf("in(md5,(%s))&select(md5,sequence)&limit(%d)", strings.Join(batch, ","), len(batch))
		if err := c.query(ctx, "feature_sequence", q, &page); err != nil {
			return nil, err
		}
		for _, t := range page {
			out[t.MD5] = t.Sequence
		}
	}
	return out, nil
}

// HealthCheck verifies the API answers a trivial query.
func (c *Client) HealthCheck(ctx context.Context) error {
	var recs []genomeRecord
	if err := c.query(ctx, "genome", "select(genome_id)&limit(1)", &recs); err != nil {
		return fmt.Errorf("bv-brc health: %w", err)
	}
	return nil
}

// statusError is a non-2xx API response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bv-brc API status %d: %s", e.Code, e.Body)
}

func (c *Client) query(ctx context.Context, collection, rql string, out any) error {
	u, err := url.Parse(c.baseURL + "/" + collection + "/")
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	u.RawQuery = rql

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", collection, domain.ErrGenomeNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", collection, err)
	}
	return nil
}

func qualityOf(rec genomeRecord) genome.Quality {
	q := genome.Quality{}
	if rec.GenomeQuality != "" {
		q[quality.KeyGood] = strings.EqualFold(rec.GenomeQuality, "Good")
	}
	put := func(key string, v *float64) {
		if v != nil {
			q[key] = *v
		}
	}
	put(quality.KeyCompleteness, rec.Completeness)
	put(quality.KeyContamination, rec.Contamination)
	put(quality.KeyFineConsistency, rec.FineConsistency)
	put(quality.KeyHypothetical, rec.Hypothetical)
	return q
}

func rqlValue(s string) string {
	return url.QueryEscape(s)
}

func errorReason(err error) string {
	var se *statusError
	switch {
	case errors.Is(err, domain.ErrGenomeNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &se):
		return "http_status"
	default:
		return "transport"
	}
}
