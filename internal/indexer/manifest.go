package indexer

import (
	"path/filepath"

	"github.com/traceview/traceview-backend/internal/models"
	"github.com/traceview/traceview-backend/internal/storage"
)

const (
	manifestFile = "manifest.json"
	snapshotFile = "snapshot.json"
)

// loadManifest reads the persisted manifest for sourceDir from cacheDir. A
// missing, unreadable, version-mismatched or relocated manifest comes back
// empty, which forces a full rebuild.
func loadManifest(cacheDir, sourceDir string) models.Manifest {
	empty := models.Manifest{
		Version:   models.ManifestVersion,
		SourceDir: sourceDir,
		Entries:   make(map[string]models.ManifestEntry),
	}

	var m models.Manifest
	if err := storage.ReadJSON(filepath.Join(cacheDir, manifestFile), &m); err != nil {
		return empty
	}
	if m.Version != models.ManifestVersion || m.SourceDir != sourceDir {
		return empty
	}
	if m.Entries == nil {
		m.Entries = make(map[string]models.ManifestEntry)
	}
	return m
}

// saveManifest persists m atomically under cacheDir.
func saveManifest(cacheDir string, m models.Manifest) error {
	return storage.WriteJSON(filepath.Join(cacheDir, manifestFile), m)
}

// LoadSnapshot reads the persisted snapshot from cacheDir, returning false
// when it is missing, unreadable or carries a different schema version.
func LoadSnapshot(cacheDir string) (*models.IndexSnapshot, bool) {
	var snap models.IndexSnapshot
	if err := storage.ReadJSON(filepath.Join(cacheDir, snapshotFile), &snap); err != nil {
		return nil, false
	}
	if snap.Version != models.SnapshotVersion {
		return nil, false
	}
	return &snap, true
}

func saveSnapshot(cacheDir string, snap *models.IndexSnapshot) error {
	return storage.WriteJSON(filepath.Join(cacheDir, snapshotFile), snap)
}
