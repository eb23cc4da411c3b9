package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"fintrack/internal/model"
)

// catalogDoc is the archive document holding the descriptor catalog.
const catalogDoc = "backup_metadata.json"

// Catalog maintains the ordered list of snapshot descriptors, newest first,
// persisted as a single archive document decoupled from the snapshot files.
//
// Catalog loss is non-fatal: when the document is empty or missing but
// snapshot files exist, Get rebuilds descriptors from file stats so backups
// always remain discoverable. All mutations are serialized through one mutex
// because the load-modify-persist sequence is not otherwise safe against
// concurrent creates and evictions.
type Catalog struct {
	archive Archive
	logger  Logger
	mu      sync.Mutex
}

// NewCatalog creates a catalog backed by the given archive.
func NewCatalog(archive Archive, logger Logger) *Catalog {
	return &Catalog{archive: archive, logger: logger}
}

// Get returns all descriptors, newest first. An empty or missing catalog
// document triggers a rebuild from the archive listing; rebuilt entries
// carry the Reconstructed flag and are persisted before being returned.
func (c *Catalog) Get() ([]model.SnapshotDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked()
}

// FindByID returns the descriptor with the given ID, if present.
// Uses the same self-healing load as Get, so a restore keeps working after
// catalog loss.
func (c *Catalog) FindByID(id string) (model.SnapshotDescriptor, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	descs, err := c.getLocked()
	if err != nil {
		return model.SnapshotDescriptor{}, false, err
	}
	for _, d := range descs {
		if d.ID == id {
			return d, true, nil
		}
	}
	return model.SnapshotDescriptor{}, false, nil
}

// Append prepends a descriptor and persists the catalog. Newest-first
// ordering is the invariant, so new descriptors always go to the front.
func (c *Catalog) Append(d model.SnapshotDescriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	descs, err := c.load()
	if err != nil {
		return err
	}
	descs = append([]model.SnapshotDescriptor{d}, descs...)
	return c.persist(descs)
}

// Remove drops the descriptors with the given IDs and persists the catalog.
// Removing an ID that is not present is a no-op, not an error.
func (c *Catalog) Remove(ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	descs, err := c.load()
	if err != nil {
		return err
	}

	kept := descs[:0]
	for _, d := range descs {
		if _, ok := drop[d.ID]; !ok {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(descs) {
		return nil
	}
	return c.persist(kept)
}

// Reconcile drops catalog entries whose backing snapshot file no longer
// exists in the archive. This guards against partial failures where a file
// delete succeeded but the catalog persist failed, or vice versa.
func (c *Catalog) Reconcile() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	descs, err := c.load()
	if err != nil {
		return err
	}
	if len(descs) == 0 {
		return nil
	}

	entries, err := c.archive.List()
	if err != nil {
		return fmt.Errorf("listing archive: %w", err)
	}
	existing := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		existing[e.Name] = struct{}{}
	}

	kept := descs[:0]
	for _, d := range descs {
		if _, ok := existing[d.Filename]; ok {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(descs) {
		return nil
	}

	dropped := len(descs) - len(kept)
	if err := c.persist(kept); err != nil {
		return err
	}
	c.logger.Info("catalog reconciled with archive", "dropped", dropped)
	return nil
}

func (c *Catalog) getLocked() ([]model.SnapshotDescriptor, error) {
	descs, err := c.load()
	if err != nil {
		return nil, err
	}
	if len(descs) > 0 {
		return descs, nil
	}

	rebuilt, err := c.rebuild()
	if err != nil {
		return nil, err
	}
	if len(rebuilt) == 0 {
		return descs, nil
	}
	if err := c.persist(rebuilt); err != nil {
		return nil, fmt.Errorf("persisting rebuilt catalog: %w", err)
	}
	c.logger.Info("catalog rebuilt from archive", "count", len(rebuilt))
	return rebuilt, nil
}

// load reads the catalog document. A missing document is initialized empty.
func (c *Catalog) load() ([]model.SnapshotDescriptor, error) {
	var descs []model.SnapshotDescriptor
	err := c.archive.ReadDoc(catalogDoc, &descs)
	if err == nil {
		return descs, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if err := c.persist(nil); err != nil {
			return nil, fmt.Errorf("initializing catalog: %w", err)
		}
		return nil, nil
	}
	return nil, fmt.Errorf("loading catalog: %w", err)
}

func (c *Catalog) persist(descs []model.SnapshotDescriptor) error {
	if descs == nil {
		descs = []model.SnapshotDescriptor{}
	}
	if err := c.archive.WriteDoc(catalogDoc, descs); err != nil {
		return fmt.Errorf("persisting catalog: %w", err)
	}
	return nil
}

// rebuild derives best-effort descriptors from the archive listing.
// The snapshot ID comes from the filename, the timestamp and size from file
// stats; the original kind and description are unrecoverable.
func (c *Catalog) rebuild() ([]model.SnapshotDescriptor, error) {
	entries, err := c.archive.List()
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}

	descs := make([]model.SnapshotDescriptor, 0, len(entries))
	for _, e := range entries {
		descs = append(descs, model.SnapshotDescriptor{
			ID:            SnapshotIDFromFilename(e.Name),
			Filename:      e.Name,
			Description:   fmt.Sprintf("Backup - %s", e.ModTime.Format("2006-01-02 15:04:05")),
			Type:          model.BackupUnknown,
			CreatedAt:     e.ModTime,
			Size:          e.Size,
			Reconstructed: true,
		})
	}
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].CreatedAt.After(descs[j].CreatedAt)
	})
	return descs, nil
}
