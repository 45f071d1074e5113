package domain

import "context"

// CacheStore owns the persisted barcode-to-product document. Every mutation
// persists the full document and emits a cache-changed notification before
// returning.
type CacheStore interface {
	Get(barcode string) (ProductRecord, bool)
	DisplayName(barcode string) string
	SetProduct(barcode string, partial ProductRecord)
	SetUnknown(barcode string)
	Remove(barcode string)
	Export() CacheDocument
}

// CatalogClient looks up a barcode in the external product catalog.
// A missing product, an unusable catalog entry, and a transport failure all
// surface as ErrProductNotFound.
type CatalogClient interface {
	Lookup(ctx context.Context, barcode string) (*ProductRecord, error)
}

// ListService is the external list-management service holding the shopping
// list this integration keeps in sync.
type ListService interface {
	ListTargets(ctx context.Context) ([]string, error)
	ActiveItems(ctx context.Context) ([]ListItem, error)
	AddItem(ctx context.Context, summary string) error
	RenameItem(ctx context.Context, oldSummary, newSummary string) error
}
