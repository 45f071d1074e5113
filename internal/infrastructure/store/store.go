package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/beepbasket/backend/internal/domain"
	"github.com/beepbasket/backend/internal/events"
)

// contributeThreshold is the scan count at which an unknown barcode is
// flagged as worth contributing catalog metadata for.
const contributeThreshold = 3

// Store is the file-backed barcode cache. It exclusively owns the in-memory
// document; a single mutex serializes every read-modify-persist sequence,
// so two mutations cannot interleave between updating the map and writing
// the file. The cache-changed notification fires after the mutex is
// released, so subscribers may read the store from their handler.
// Persistence is best-effort durability, not a transaction log: a write
// failure keeps the in-memory state and is only logged.
type Store struct {
	path   string
	bus    *events.Bus
	logger zerolog.Logger

	mu  sync.Mutex
	doc domain.CacheDocument
}

// New creates a store persisting to path. Call Load before first use.
func New(path string, bus *events.Bus, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		bus:    bus,
		logger: logger.With().Str("component", "store").Logger(),
		doc:    make(domain.CacheDocument),
	}
}

// Load reads the persisted document. A missing file starts an empty
// document; a corrupt file is logged, left in place for manual recovery,
// and also starts an empty document. Never returns an error to the caller.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info().Str("path", s.path).Msg("no cache file, starting empty")
		} else {
			s.logger.Error().Err(err).Str("path", s.path).Msg("cache read failed, starting empty")
		}
		s.doc = make(domain.CacheDocument)
		return
	}

	doc := make(domain.CacheDocument)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Error().Err(err).Str("path", s.path).Msg("cache file corrupt, starting empty")
			s.doc = make(domain.CacheDocument)
			return
		}
	}
	s.doc = doc
	s.logger.Info().Int("entries", len(doc)).Str("path", s.path).Msg("cache loaded")
}

// Get returns the full record for a barcode.
func (s *Store) Get(barcode string) (domain.ProductRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc[barcode]
	return rec, ok
}

// DisplayName returns the resolved name for a complete entry and the
// barcode itself otherwise, so an unresolved or partial name is never shown.
func (s *Store) DisplayName(barcode string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.doc[barcode]; ok && rec.Status == domain.StatusComplete && rec.Name != "" {
		return rec.Name
	}
	return barcode
}

// SetProduct merges caller-provided fields into a complete record for the
// barcode, bumps its scan count, persists and notifies.
func (s *Store) SetProduct(barcode string, partial domain.ProductRecord) {
	s.mu.Lock()
	now := time.Now().Format(time.RFC3339)
	prev := s.doc[barcode]

	rec := partial
	rec.Status = domain.StatusComplete
	rec.ScannedCount = prev.ScannedCount + 1
	rec.LastUpdated = now
	if prev.FirstSeen != "" {
		rec.FirstSeen = prev.FirstSeen
	} else {
		rec.FirstSeen = now
	}

	s.doc[barcode] = rec
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	s.logger.Info().Str("barcode", barcode).Str("name", rec.Name).Msg("cached product")
}

// SetUnknown records one more sighting of a barcode the catalog could not
// resolve. Once the count reaches the contribution threshold the entry is
// flagged ready to contribute.
func (s *Store) SetUnknown(barcode string) {
	s.mu.Lock()
	rec, ok := s.doc[barcode]
	if !ok {
		rec = domain.ProductRecord{
			Status:    domain.StatusUnknown,
			Name:      barcode,
			FirstSeen: time.Now().Format(time.RFC3339),
		}
	}
	rec.ScannedCount++
	if rec.ScannedCount >= contributeThreshold {
		rec.ReadyToContribute = true
	}
	rec.LastUpdated = time.Now().Format(time.RFC3339)

	s.doc[barcode] = rec
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	s.logger.Info().Str("barcode", barcode).Int("count", rec.ScannedCount).Msg("unknown barcode scanned")
}

// Remove deletes the entry if present; absent barcodes are a silent no-op.
func (s *Store) Remove(barcode string) {
	s.mu.Lock()
	if _, ok := s.doc[barcode]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.doc, barcode)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	s.logger.Info().Str("barcode", barcode).Msg("removed cache entry")
}

// Export returns a snapshot copy of the document for external inspection.
func (s *Store) Export() domain.CacheDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(domain.CacheDocument, len(s.doc))
	for k, v := range s.doc {
		out[k] = v
	}
	return out
}

// persistLocked writes the full document back to disk. Pretty-printed UTF-8
// with non-ASCII preserved. Caller holds the mutex.
func (s *Store) persistLocked() {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Error().Err(err).Str("path", s.path).Msg("cache dir create failed")
			return
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("cache write failed")
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.doc); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("cache encode failed")
	}
}

func (s *Store) notify() {
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicCacheUpdated})
	}
}
