package domain

// ProductRecord status values.
const (
	StatusComplete = "complete"
	StatusUnknown  = "unknown"
)

// ProductRecord is the cached resolution result for one barcode.
// For StatusComplete, Name holds the resolved display name; for
// StatusUnknown it defaults to the barcode itself.
type ProductRecord struct {
	Status            string `json:"status"`
	Name              string `json:"name"`
	Brands            string `json:"brands,omitempty"`
	Categories        string `json:"categories,omitempty"`
	Quantity          string `json:"quantity,omitempty"`
	Stores            string `json:"stores,omitempty"`
	Source            string `json:"source,omitempty"`
	LocalOverride     bool   `json:"local_override,omitempty"`
	ScannedCount      int    `json:"scanned_count"`
	FirstSeen         string `json:"first_seen,omitempty"`
	LastUpdated       string `json:"last_updated,omitempty"`
	ReadyToContribute bool   `json:"ready_to_contribute,omitempty"`
}

// CacheDocument is the persisted mapping from barcode to ProductRecord.
type CacheDocument map[string]ProductRecord

// ListItem is an entry on the external shopping list, identified by its
// current display text. Never persisted locally.
type ListItem struct {
	Summary string `json:"summary"`
	Status  string `json:"status"`
}

// ListItem status values used by the external todo service.
const (
	ItemNeedsAction = "needs_action"
	ItemCompleted   = "completed"
)

// MappingRequest carries a manual barcode-to-product mapping.
type MappingRequest struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Brands   string `json:"brands,omitempty"`
	Quantity string `json:"quantity,omitempty"`
	Stores   string `json:"stores,omitempty"`
	Source   string `json:"source,omitempty"`
}
