package cleanup

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"property-catalog/internal/database"
	"property-catalog/internal/media"
)

// Service removes media files no longer referenced by any property image:
// leftovers from cleared imports, crashed promotions, or externally deleted
// rows. Files inside an active import's staging area are only touched once
// they age past the retention window.
type Service struct {
	db    *database.GormDB
	store *media.Store
}

// NewService creates a new cleanup service
func NewService(db *database.GormDB, store *media.Store) *Service {
	return &Service{db: db, store: store}
}

// Config holds configuration for cleanup operations
type Config struct {
	RetentionHours   int  // Minimum file age before deletion
	MaxDeletionCount int  // Maximum number of files to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted without actually deleting
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RetentionHours:   24,
		MaxDeletionCount: 1000,
		DryRun:           false,
	}
}

// Result holds the result of a cleanup operation
type Result struct {
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	DeletedFiles []string  `json:"deleted_files,omitempty"`
	Errors       []string  `json:"errors,omitempty"`
}

// FindOrphanedFiles returns media files under properties/ that no image row
// references and that are older than the retention window, plus stale
// staging directories from interrupted import runs.
func (s *Service) FindOrphanedFiles(retentionHours int) ([]string, []string, error) {
	paths, err := s.db.ListImagePaths()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list referenced image paths: %w", err)
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	cutoff := time.Now().Add(-time.Duration(retentionHours) * time.Hour)
	root := s.store.Root()

	var orphans []string
	propertiesDir := filepath.Join(root, "properties")
	err = filepath.WalkDir(propertiesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := referenced[rel]; ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			orphans = append(orphans, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan media root: %w", err)
	}

	var staleStaging []string
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return orphans, nil, nil
		}
		return nil, nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() || !media.IsStagingDir(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			staleStaging = append(staleStaging, entry.Name())
		}
	}

	return orphans, staleStaging, nil
}

// Run deletes orphaned media files and stale staging directories.
func (s *Service) Run(config Config) (*Result, error) {
	result := &Result{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	orphans, staleStaging, err := s.FindOrphanedFiles(config.RetentionHours)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(orphans) + len(staleStaging)
	if result.TargetCount == 0 {
		log.Println("Cleanup: No orphaned media files found")
		return result, nil
	}

	// Safety check: abort if too many files would be deleted
	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d files exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	log.Printf("Cleanup: %d orphaned files, %d stale staging dirs (retention: %dh, dry-run: %v)",
		len(orphans), len(staleStaging), config.RetentionHours, config.DryRun)

	for _, rel := range orphans {
		if config.DryRun {
			log.Printf("Cleanup: [dry-run] would delete %s", rel)
			result.DeletedFiles = append(result.DeletedFiles, rel)
			result.DeletedCount++
			continue
		}
		if err := s.store.Remove(rel); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			continue
		}
		result.DeletedFiles = append(result.DeletedFiles, rel)
		result.DeletedCount++
	}

	for _, name := range staleStaging {
		if config.DryRun {
			log.Printf("Cleanup: [dry-run] would delete staging dir %s", name)
			result.DeletedFiles = append(result.DeletedFiles, name)
			result.DeletedCount++
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.store.Root(), name)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.DeletedFiles = append(result.DeletedFiles, name)
		result.DeletedCount++
	}

	log.Printf("Cleanup: Deleted %d of %d targets", result.DeletedCount, result.TargetCount)
	return result, nil
}
