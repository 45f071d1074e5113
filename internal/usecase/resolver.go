package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/beepbasket/backend/internal/domain"
)

// SourceManual marks records entered through the mapping interface rather
// than resolved from the catalog.
const SourceManual = "manual"

// sentinelValues are scanner payloads that mean "no value" and are dropped
// before classification.
var sentinelValues = map[string]struct{}{
	"unavailable": {},
	"unknown":     {},
	"none":        {},
}

// ResolverConfig holds tuning for the resolution engine.
type ResolverConfig struct {
	// SettleDelay is the pause between caching a scan result and querying
	// the list, giving a near-simultaneous duplicate scan time to become a
	// cache hit. Defaults to one second.
	SettleDelay time.Duration
}

// Resolver is the resolution engine: it turns a raw scan into a display
// name via classifier, cache and catalog, and hands the name to the list
// syncer. It also carries the manual mapping interface.
type Resolver struct {
	store       domain.CacheStore
	catalog     domain.CatalogClient
	lists       *ListSyncer
	settleDelay time.Duration
	logger      zerolog.Logger
}

// NewResolver creates the resolution engine with its collaborators.
func NewResolver(
	store domain.CacheStore,
	catalog domain.CatalogClient,
	lists *ListSyncer,
	config ResolverConfig,
	logger zerolog.Logger,
) *Resolver {
	settle := config.SettleDelay
	if settle == 0 {
		settle = time.Second
	}

	return &Resolver{
		store:       store,
		catalog:     catalog,
		lists:       lists,
		settleDelay: settle,
		logger:      logger.With().Str("component", "resolver").Logger(),
	}
}

// ResolveAndSync handles one inbound scan event end to end. Invalid and
// sentinel payloads are dropped with a debug log; every accepted scan ends
// with a list-sync attempt under some display name, worst case the barcode
// itself.
func (r *Resolver) ResolveAndSync(ctx context.Context, raw string) {
	barcode := strings.TrimSpace(raw)
	if _, sentinel := sentinelValues[strings.ToLower(barcode)]; barcode == "" || sentinel {
		r.logger.Debug().Str("payload", raw).Msg("skipping empty or sentinel scan")
		return
	}

	if !domain.IsValidBarcode(barcode) {
		r.logger.Debug().Str("payload", barcode).Msg("rejected non-barcode payload")
		return
	}

	var displayName string
	if rec, ok := r.store.Get(barcode); ok && rec.Status == domain.StatusComplete {
		displayName = rec.Name
		r.logger.Info().Str("barcode", barcode).Str("name", displayName).Msg("cache hit")
	} else if rec, err := r.catalog.Lookup(ctx, barcode); err == nil {
		r.store.SetProduct(barcode, *rec)
		displayName = rec.Name
		r.logger.Info().Str("barcode", barcode).Str("name", displayName).Msg("catalog hit")
	} else {
		r.store.SetUnknown(barcode)
		displayName = barcode
		r.logger.Warn().Str("barcode", barcode).Msg("unresolved barcode")
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(r.settleDelay):
	}

	r.lists.EnsurePresent(ctx, displayName)
}

// AddMapping applies a manual barcode-to-product mapping: the record is
// stored as complete with a local override, and if the name changed from
// the previously cached one, matching active list items are renamed.
func (r *Resolver) AddMapping(ctx context.Context, req domain.MappingRequest) error {
	barcode := strings.TrimSpace(req.Barcode)
	name := strings.TrimSpace(req.Name)
	if barcode == "" || name == "" {
		return domain.ErrInvalidRequest
	}

	oldName := barcode
	if prev, ok := r.store.Get(barcode); ok && prev.Name != "" {
		oldName = prev.Name
	}

	source := req.Source
	if source == "" {
		source = SourceManual
	}

	r.store.SetProduct(barcode, domain.ProductRecord{
		Name:          name,
		Brands:        req.Brands,
		Quantity:      req.Quantity,
		Stores:        req.Stores,
		Source:        source,
		LocalOverride: true,
	})

	if oldName != name {
		r.lists.RenameMatches(ctx, oldName, name, barcode)
	}

	r.logger.Info().Str("barcode", barcode).Str("name", name).Msg("manual mapping updated")
	return nil
}

// RemoveMapping deletes the cached record for a barcode.
func (r *Resolver) RemoveMapping(ctx context.Context, barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.ErrInvalidRequest
	}
	r.store.Remove(barcode)
	return nil
}
