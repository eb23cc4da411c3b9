package backup

import "sync"

// Service is the orchestration layer for backup operations: snapshot
// creation, listing, restore, deletion and retention.
//
// Create, Restore, Delete and Evict all read-modify-write the catalog
// document, so they are serialized through a single service mutex. The
// scheduler and the HTTP layer may therefore trigger operations concurrently
// without losing catalog updates.
type Service struct {
	collections Collections
	archive     Archive
	catalog     *Catalog
	settings    *SettingsStore
	logger      Logger
	clock       Clock
	mu          sync.Mutex
}

// NewService creates a new Service with the provided dependencies.
func NewService(collections Collections, archive Archive, catalog *Catalog, settings *SettingsStore, logger Logger, clock Clock) *Service {
	return &Service{
		collections: collections,
		archive:     archive,
		catalog:     catalog,
		settings:    settings,
		logger:      logger,
		clock:       clock,
	}
}

// Settings returns the settings store backing this service.
func (s *Service) Settings() *SettingsStore {
	return s.settings
}

// Collections returns the live collections store backing this service.
func (s *Service) Collections() Collections {
	return s.collections
}
