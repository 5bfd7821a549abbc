package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"regional-means/models"
	"regional-means/providers"
	"regional-means/regions"
)

const cacheSize = 64

type Aggregator struct {
	providers []providers.Provider
	catalog   regions.Catalog
	workers   int
	log       *slog.Logger
	means     *expirable.LRU[string, *models.RegionalMeans]
	global    *expirable.LRU[string, *models.HemisphericMeans]
}

func NewAggregator(catalog regions.Catalog, cacheDurationMinutes, workers int, log *slog.Logger) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	ttl := time.Duration(cacheDurationMinutes) * time.Minute
	return &Aggregator{
		providers: make([]providers.Provider, 0),
		catalog:   catalog,
		workers:   workers,
		log:       log,
		means:     expirable.NewLRU[string, *models.RegionalMeans](cacheSize, nil, ttl),
		global:    expirable.NewLRU[string, *models.HemisphericMeans](cacheSize, nil, ttl),
	}
}

// AddProvider добавляет провайдера
func (a *Aggregator) AddProvider(provider providers.Provider) {
	a.providers = append(a.providers, provider)
}

// Catalog возвращает каталог регионов по умолчанию
func (a *Aggregator) Catalog() regions.Catalog {
	return a.catalog
}

// provider выбирает первого провайдера, поддерживающего файл
func (a *Aggregator) provider(path string) (providers.Provider, error) {
	for _, p := range a.providers {
		if p.Supports(path) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", providers.ErrUnsupported, path)
}

// loadField загружает файл и строит поле на проверенной сетке
func (a *Aggregator) loadField(ctx context.Context, path, variable string) (*models.GriddedData, *regions.Field, error) {
	p, err := a.provider(path)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	data, err := p.Load(ctx, path, variable)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", p.Name(), err)
	}

	field, err := regions.NewField(data.Data, data.Lat, data.Lon)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	a.log.Debug("поле загружено",
		slog.String("provider", p.Name()),
		slog.String("path", path),
		slog.Int("ntime", field.NTime()),
		slog.Int("nlat", field.Grid().NLat()),
		slog.Int("nlon", field.Grid().NLon()),
		slog.Bool("flipped", field.Grid().Flipped()),
		slog.Duration("elapsed", time.Since(start)))

	return data, field, nil
}

// RegionalMeans считает средние по регионам names (пусто - весь каталог)
func (a *Aggregator) RegionalMeans(ctx context.Context, path, variable string, names ...string) (*models.RegionalMeans, error) {
	catalog, err := a.catalog.Select(names...)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s|%s|%s", path, variable, strings.Join(catalog.Names(), ","))
	if cached, ok := a.means.Get(cacheKey); ok {
		a.log.Debug("результат из кеша", slog.String("key", cacheKey))
		return cached.Clone(), nil
	}

	data, field, err := a.loadField(ctx, path, variable)
	if err != nil {
		return nil, err
	}

	rows, err := a.compute(ctx, field, catalog)
	if err != nil {
		return nil, err
	}

	result := &models.RegionalMeans{
		Source:      path,
		Variable:    data.Variable,
		Times:       data.Times,
		Regions:     make([]models.RegionSeries, len(catalog)),
		Flipped:     field.Grid().Flipped(),
		LastUpdated: time.Now(),
	}
	if result.Variable == "" {
		result.Variable = variable
	}
	for k, r := range catalog {
		result.Regions[k] = models.RegionSeries{
			Name:   r.Name,
			Label:  r.Label,
			South:  r.South,
			North:  r.North,
			West:   r.West,
			East:   r.East,
			Values: rows[k],
		}
	}

	// в кеше своя копия, вызывающий может менять результат
	a.means.Add(cacheKey, result.Clone())
	a.log.Info("региональные средние вычислены",
		slog.String("path", path),
		slog.Int("regions", len(catalog)),
		slog.Int("ntime", field.NTime()))

	return result, nil
}

// compute считает регионы параллельно, каждый в свою строку
func (a *Aggregator) compute(ctx context.Context, field *regions.Field, catalog regions.Catalog) ([][]float64, error) {
	rows := make([][]float64, len(catalog))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for k, r := range catalog {
		k, r := k, r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := field.RegionMean(r)
			if err != nil {
				return err
			}
			rows[k] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// HemisphericMeans считает глобальное среднее и средние по полушариям
func (a *Aggregator) HemisphericMeans(ctx context.Context, path, variable string) (*models.HemisphericMeans, error) {
	cacheKey := path + "|" + variable
	if cached, ok := a.global.Get(cacheKey); ok {
		return cached.Clone(), nil
	}

	data, field, err := a.loadField(ctx, path, variable)
	if err != nil {
		return nil, err
	}

	gm, nh, sh := field.GlobalHemisphericMeans()
	result := &models.HemisphericMeans{
		Source:      path,
		Variable:    data.Variable,
		Times:       data.Times,
		Global:      gm,
		North:       nh,
		South:       sh,
		LastUpdated: time.Now(),
	}
	if result.Variable == "" {
		result.Variable = variable
	}

	a.global.Add(cacheKey, result.Clone())
	return result, nil
}

// Mask строит маску региона на сетке файла. Широты в ответе идут с юга на север.
func (a *Aggregator) Mask(ctx context.Context, path, variable, name string) (lat, lon []float64, mask [][]float64, err error) {
	r, ok := a.catalog.Lookup(name)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %q", regions.ErrUnknownRegion, name)
	}

	_, field, err := a.loadField(ctx, path, variable)
	if err != nil {
		return nil, nil, nil, err
	}

	grid := field.Grid()
	mask, err = regions.BuildMask(grid.Lat(), grid.Lon(), r)
	if err != nil {
		return nil, nil, nil, err
	}
	a.log.Debug("маска построена", slog.String("region", r.String()), slog.String("path", path))
	return grid.Lat(), grid.Lon(), mask, nil
}

// Load загружает файл подходящим провайдером без вычислений
func (a *Aggregator) Load(ctx context.Context, path, variable string) (*models.GriddedData, error) {
	data, _, err := a.loadField(ctx, path, variable)
	return data, err
}

// ClearCache очищает кеш
func (a *Aggregator) ClearCache() {
	a.means.Purge()
	a.global.Purge()
}

func (a *Aggregator) GetProviderCount() int {
	return len(a.providers)
}

// GetProvidersInfo возвращает информацию о провайдерах
func (a *Aggregator) GetProvidersInfo() []string {
	info := make([]string, len(a.providers))
	for i, provider := range a.providers {
		info[i] = provider.Name()
	}
	return info
}
