// Package search provides the facility search engine: a remote lookup with a local
// filter-and-rank fallback over the catalog.
package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/coldfinder/internal/catalog"
	"github.com/hyperjump/coldfinder/internal/config"
	"github.com/hyperjump/coldfinder/internal/models"
	"github.com/hyperjump/coldfinder/internal/ranking"
	"github.com/hyperjump/coldfinder/internal/suggest"
)

// Catalog provides the knowledge base snapshot a search runs against.
type Catalog interface {
	Snapshot() *catalog.KnowledgeBase
}

// RemoteSearcher queries the live facility service. Any error, including an empty
// result, makes the engine fall back to the local catalog.
type RemoteSearcher interface {
	Search(ctx context.Context, q *models.Query) ([]*models.Facility, error)
}

// Engine runs facility searches. It holds no per-query state and is safe for
// concurrent use.
type Engine struct {
	catalog Catalog
	remote  RemoteSearcher
	config  *config.SearchConfig
	logger  *zap.Logger

	suggestMu sync.Mutex
	suggestKB *catalog.KnowledgeBase
	suggester *suggest.Suggester
}

// NewEngine creates a search engine. remote may be nil, in which case every search is
// answered from the catalog. A nil cfg uses defaults and a nil logger discards logs.
func NewEngine(cat Catalog, remote RemoteSearcher, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog: cat,
		remote:  remote,
		config:  cfg,
		logger:  logger,
	}
}

// RemoteEnabled reports whether a remote searcher is configured.
func (e *Engine) RemoteEnabled() bool {
	return e.remote != nil
}

// Search answers q from the remote service when it returns at least one facility,
// and from the local catalog otherwise. A blank crop yields an empty local result
// without contacting the remote service. Search never fails.
func (e *Engine) Search(ctx context.Context, q *models.Query) *models.RankedResult {
	startTime := time.Now()
	query := copyQuery(q)
	kb := e.catalog.Snapshot()

	if query.IsBlank() {
		return e.finish(models.NewRankedResult(nil, models.SourceLocalFallback), kb, &query, startTime)
	}
	if facilities, ok := e.searchRemote(ctx, &query); ok {
		return e.finish(models.NewRankedResult(facilities, models.SourceRemote), kb, &query, startTime)
	}
	return e.finish(LocalSearch(kb, &query), kb, &query, startTime)
}

// SearchLocal answers q from the local catalog only.
func (e *Engine) SearchLocal(q *models.Query) *models.RankedResult {
	startTime := time.Now()
	query := copyQuery(q)
	kb := e.catalog.Snapshot()
	return e.finish(LocalSearch(kb, &query), kb, &query, startTime)
}

func (e *Engine) searchRemote(ctx context.Context, q *models.Query) ([]*models.Facility, bool) {
	if e.remote == nil {
		return nil, false
	}
	timeout := e.config.RemoteTimeout
	if timeout <= 0 {
		timeout = config.DefaultRemoteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	facilities, err := e.remote.Search(ctx, q)
	if err != nil {
		e.logger.Warn("remote search failed, using local catalog",
			zap.String("crop", q.Crop), zap.Error(err))
		return nil, false
	}
	if len(facilities) == 0 {
		e.logger.Debug("remote search returned no facilities, using local catalog",
			zap.String("crop", q.Crop))
		return nil, false
	}
	return facilities, true
}

func (e *Engine) finish(result *models.RankedResult, kb *catalog.KnowledgeBase, q *models.Query, startTime time.Time) *models.RankedResult {
	result.Query = *q
	if result.Source == models.SourceLocalFallback && kb != nil {
		result.CatalogVersion = kb.Version()
	}
	result.Bounds = ranking.Bounds(result.Facilities)
	if kb != nil && !q.IsBlank() {
		if _, known := kb.LookupCropProfile(q.NormalizedCrop()); !known {
			result.Suggestions = e.suggest(kb, q.NormalizedCrop())
		}
	}
	result.QueryTime = time.Since(startTime).Milliseconds()
	e.logger.Debug("search complete",
		zap.String("crop", q.Crop),
		zap.String("location", q.Location),
		zap.String("source", string(result.Source)),
		zap.Int("results", len(result.Facilities)),
	)
	return result
}

// suggest returns crop names close to crop, rebuilding the index when the catalog
// snapshot changes.
func (e *Engine) suggest(kb *catalog.KnowledgeBase, crop string) []string {
	if !e.config.SuggestionsOrDefault() {
		return nil
	}
	e.suggestMu.Lock()
	defer e.suggestMu.Unlock()
	if e.suggestKB != kb {
		s, err := suggest.New(kb.CropNames(), e.config.MaxSuggestions)
		if err != nil {
			e.logger.Warn("failed to build crop suggestions", zap.Error(err))
			return nil
		}
		if e.suggester != nil {
			_ = e.suggester.Close()
		}
		e.suggester, e.suggestKB = s, kb
	}
	return e.suggester.Suggest(crop)
}

// Close releases the suggestion index.
func (e *Engine) Close() error {
	e.suggestMu.Lock()
	defer e.suggestMu.Unlock()
	if e.suggester == nil {
		return nil
	}
	err := e.suggester.Close()
	e.suggester, e.suggestKB = nil, nil
	return err
}

func copyQuery(q *models.Query) models.Query {
	if q == nil {
		return models.Query{}
	}
	return *q
}
