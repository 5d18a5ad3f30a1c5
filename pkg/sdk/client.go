package facetdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/facetdex/internal/db"
	dbBadger "github.com/kailas-cloud/facetdex/internal/db/badger"
	dbRedis "github.com/kailas-cloud/facetdex/internal/db/redis"
	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	"github.com/kailas-cloud/facetdex/internal/domain/search/field"
	"github.com/kailas-cloud/facetdex/internal/domain/search/fuzzy"
	"github.com/kailas-cloud/facetdex/internal/repository/catalog"
	"github.com/kailas-cloud/facetdex/internal/textsim/trigram"
	"github.com/kailas-cloud/facetdex/internal/textsim/unaccent"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/facetdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "facetdex:"
)

// catalogWriter is the write side of the catalog repository.
type catalogWriter interface {
	SaveEntities(ctx context.Context, entities []entity.Entity) error
	DeleteEntity(ctx context.Context, id string) error
	SaveWorkType(ctx context.Context, t category.Tag) error
	WorkTypes(ctx context.Context) ([]category.Tag, error)
	CheckHierarchy(ctx context.Context) error
}

// Client is the facetdex SDK entry point.
type Client struct {
	store     db.Store
	catalog   catalogWriter
	searchSvc searchuc.Searcher
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:        defaultKeyPrefix,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("facetdex: storage required (use WithValkey, WithRedis or WithBadger)")
	}

	fields, err := searchFields(cfg.fields)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("facetdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, fields, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case dbRedis.DriverValkey, dbRedis.DriverRedis:
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, fmt.Errorf("facetdex: %s address required", cfg.driver)
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Driver:   cfg.driver,
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("facetdex: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case dbBadger.Driver:
		s, err := dbBadger.Open(dbBadger.Config{Dir: cfg.dir, InMemory: cfg.inMemory, Logger: cfg.logger})
		if err != nil {
			return nil, fmt.Errorf("facetdex: open badger store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("facetdex: unknown driver %q", cfg.driver)
	}
}

func searchFields(in []SearchField) ([]field.SearchField, error) {
	if len(in) == 0 {
		in = []SearchField{
			{Name: "title", Preprocessing: PreprocessFoldDiacritics},
			{Name: "subtitle", Preprocessing: PreprocessFoldDiacritics},
		}
	}
	out := make([]field.SearchField, len(in))
	for i, f := range in {
		sf, err := field.New(f.Name, field.Preprocessing(f.Preprocessing))
		if err != nil {
			return nil, fmt.Errorf("facetdex: %w", err)
		}
		out[i] = sf
	}
	return out, nil
}

func wireClient(store db.Store, cfg *clientConfig, fields []field.SearchField, obs *observer) *Client {
	repo := catalog.New(store, cfg.keyPrefix)
	engine := fuzzy.NewEngine(trigram.Measure{}, nil, unaccent.Fold).WithAlwaysFold(cfg.alwaysFold)

	svc := searchuc.New(repo, repo, engine, fields).WithOrdering(language.German)
	if cfg.threshold != nil {
		svc = svc.WithThreshold(*cfg.threshold)
	}
	facets, hierarchy := []string{"language", "topic"}, "work_type"
	if cfg.facets != nil {
		facets = cfg.facets
	}
	if cfg.hierarchy != nil {
		hierarchy = *cfg.hierarchy
	}
	svc = svc.WithFacets(facets, hierarchy)

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		store:     store,
		catalog:   repo,
		searchSvc: searchuc.NewInstrumented(svc, logger),
		healthSvc: healthuc.New(store, repo),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Works returns the work search and storage service.
func (c *Client) Works() *WorkService {
	return &WorkService{search: c.searchSvc, catalog: c.catalog, obs: c.obs}
}

// WorkTypes returns the work type hierarchy service.
func (c *Client) WorkTypes() *WorkTypeService {
	return &WorkTypeService{catalog: c.catalog, obs: c.obs}
}
