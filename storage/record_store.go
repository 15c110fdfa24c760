package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"covid-dashboard/models"
	"covid-dashboard/utils"
)

// Cache keys.
const (
	KeyDataset     = "covidData"
	KeyLastUpdated = "lastUpdated"
	KeyUploadID    = "uploadID"
)

// RecordStore holds the resident dataset and mirrors it into a KV cache.
// Cache failures are logged and never returned.
type RecordStore struct {
	kv     KV
	logger *utils.Logger
	now    func() time.Time

	mu          sync.RWMutex
	dataset     models.Dataset
	lastUpdated time.Time
	uploadID    string
}

// NewRecordStore creates an empty store over kv.
func NewRecordStore(kv KV, logger *utils.Logger) *RecordStore {
	return &RecordStore{kv: kv, logger: logger, now: time.Now}
}

// Load restores the cached dataset. It reports false when nothing usable is
// cached: a missing entry, a missing timestamp, unreadable storage or JSON that
// does not decode to a list of string records.
func (s *RecordStore) Load(ctx context.Context) (models.Dataset, bool) {
	raw, ok, err := s.kv.Get(ctx, KeyDataset)
	if err != nil {
		s.logger.Warn("[store] Failed to load from cache: %v", err)
		return nil, false
	}
	stamp, stampOK, err := s.kv.Get(ctx, KeyLastUpdated)
	if err != nil {
		s.logger.Warn("[store] Failed to load from cache: %v", err)
		return nil, false
	}
	if !ok || !stampOK || raw == "" || stamp == "" {
		return nil, false
	}

	var dataset models.Dataset
	if err := json.Unmarshal([]byte(raw), &dataset); err != nil {
		s.logger.Warn("[store] Failed to load from cache: %v", err)
		return nil, false
	}
	if dataset == nil {
		return nil, false
	}

	lastUpdated, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		s.logger.Warn("[store] Cached timestamp %q unreadable: %v", stamp, err)
	}
	uploadID, _, err := s.kv.Get(ctx, KeyUploadID)
	if err != nil {
		s.logger.Debug("[store] No upload ID in cache: %v", err)
	}

	s.mu.Lock()
	s.dataset = dataset
	s.lastUpdated = lastUpdated
	s.uploadID = uploadID
	s.mu.Unlock()

	s.logger.Info("[store] Data loaded from cache (%d records), last updated: %s",
		len(dataset), lastUpdated.Local().Format("2006-01-02 15:04:05"))
	return dataset, true
}

// Save writes the dataset and a save timestamp to the cache, best effort.
func (s *RecordStore) Save(ctx context.Context, dataset models.Dataset) {
	if dataset == nil {
		dataset = models.Dataset{}
	}
	data, err := json.Marshal(dataset)
	if err != nil {
		s.logger.Warn("[store] Failed to save to cache: %v", err)
		return
	}

	now := s.now().UTC()
	s.mu.RLock()
	uploadID := s.uploadID
	s.mu.RUnlock()

	if err := s.kv.Set(ctx, KeyDataset, string(data)); err != nil {
		s.logger.Warn("[store] Failed to save to cache: %v", err)
		return
	}
	if err := s.kv.Set(ctx, KeyLastUpdated, now.Format(time.RFC3339Nano)); err != nil {
		s.logger.Warn("[store] Failed to save to cache: %v", err)
		return
	}
	s.mu.Lock()
	s.lastUpdated = now
	s.mu.Unlock()
	if err := s.kv.Set(ctx, KeyUploadID, uploadID); err != nil {
		s.logger.Warn("[store] Failed to save upload ID: %v", err)
		return
	}
	s.logger.Debug("[store] Saved %d records (%d bytes)", len(dataset), len(data))
}

// Replace makes dataset the resident one under a fresh upload ID and saves it.
func (s *RecordStore) Replace(ctx context.Context, dataset models.Dataset) {
	s.mu.Lock()
	s.dataset = dataset
	s.uploadID = uuid.NewString()
	s.mu.Unlock()

	s.Save(ctx, dataset)
}

// Current returns the resident dataset. Callers must not modify it.
func (s *RecordStore) Current() models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

func (s *RecordStore) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

func (s *RecordStore) UploadID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploadID
}
