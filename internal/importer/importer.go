package importer

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"property-catalog/internal/database"
	"property-catalog/internal/media"
	"property-catalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default input filenames inside the base directory.
const (
	DefaultLocationsFile  = "locations.csv"
	DefaultPropertiesFile = "properties.csv"
	DefaultImagesFile     = "images.csv"
)

// Options control a single import run.
type Options struct {
	BaseDir        string
	LocationsFile  string
	PropertiesFile string
	ImagesFile     string
	Clear          bool
}

// Result reports what one import run did.
type Result struct {
	RunID      string `json:"run_id"`
	Locations  int    `json:"locations"`
	Properties int    `json:"properties"`
	Images     int    `json:"images"`
	Skipped    int    `json:"skipped"`
	Cleared    bool   `json:"cleared"`
}

// Importer performs idempotent, all-or-nothing CSV loads of locations,
// properties and images.
type Importer struct {
	db    *database.GormDB
	store *media.Store
}

// New creates an importer writing to the given database and media store.
func New(db *database.GormDB, store *media.Store) *Importer {
	return &Importer{db: db, store: store}
}

// Run executes one import. Structural validation of all three inputs happens
// before any mutation; the clear step and the three seeding phases run inside
// a single transaction, so a failure at any row rolls back every row from the
// entire run. Image bytes are staged outside their final paths and promoted
// only after the transaction commits, so a rolled back run leaves no files
// behind either.
func (imp *Importer) Run(opts Options) (*Result, error) {
	if opts.LocationsFile == "" {
		opts.LocationsFile = DefaultLocationsFile
	}
	if opts.PropertiesFile == "" {
		opts.PropertiesFile = DefaultPropertiesFile
	}
	if opts.ImagesFile == "" {
		opts.ImagesFile = DefaultImagesFile
	}

	log.Printf("Importer: Seeding from CSV (base: %s)", opts.BaseDir)

	locationsTable, err := readTable(filepath.Join(opts.BaseDir, opts.LocationsFile))
	if err != nil {
		return nil, err
	}
	propertiesTable, err := readTable(filepath.Join(opts.BaseDir, opts.PropertiesFile))
	if err != nil {
		return nil, err
	}
	imagesTable, err := readTable(filepath.Join(opts.BaseDir, opts.ImagesFile))
	if err != nil {
		return nil, err
	}

	// Header validation for every input before touching the database.
	// Locations and properties must carry data; the images input may be
	// header-only for a catalog without photos yet.
	if err := locationsTable.requireColumns("name"); err != nil {
		return nil, err
	}
	if err := locationsTable.requireRows(); err != nil {
		return nil, err
	}
	if err := propertiesTable.requireColumns(
		"external_id", "location_name", "property_name", "country", "address", "title", "description",
	); err != nil {
		return nil, err
	}
	if err := propertiesTable.requireRows(); err != nil {
		return nil, err
	}
	if err := imagesTable.requireColumns(
		"property_external_id", "file_path", "is_primary", "alt_text",
	); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.New().String(), Cleared: opts.Clear}
	startedAt := time.Now()

	staging, err := imp.store.NewStaging(result.RunID)
	if err != nil {
		return nil, err
	}

	err = imp.db.Transaction(func(tx *gorm.DB) error {
		if opts.Clear {
			if err := clearExisting(tx); err != nil {
				return err
			}
			log.Println("Importer: Cleared existing data")
		}

		locations, err := imp.seedLocations(tx, locationsTable)
		if err != nil {
			return err
		}
		result.Locations = len(locations)
		log.Printf("Importer: Locations seeded: %d", result.Locations)

		properties, err := imp.seedProperties(tx, propertiesTable, locations)
		if err != nil {
			return err
		}
		result.Properties = len(properties)
		log.Printf("Importer: Properties seeded: %d", result.Properties)

		created, skipped, err := imp.seedImages(tx, imagesTable, opts.BaseDir, properties, staging)
		if err != nil {
			return err
		}
		result.Images = created
		result.Skipped = skipped
		log.Printf("Importer: Images seeded: %d (skipped: %d)", created, skipped)

		return nil
	})

	if err != nil {
		if discardErr := staging.Discard(); discardErr != nil {
			log.Printf("Importer: Failed to discard staging area: %v", discardErr)
		}
		imp.writeLog(result, startedAt, err, true)
		return nil, err
	}

	if err := staging.Promote(); err != nil {
		// Database state is committed at this point; the scheduled cleanup
		// sweeps whatever the interrupted promotion left in staging.
		imp.writeLog(result, startedAt, err, false)
		return nil, err
	}

	imp.writeLog(result, startedAt, nil, false)
	log.Println("Importer: Seeding completed successfully")
	return result, nil
}

// clearExisting deletes all rows in FK dependency order.
func clearExisting(tx *gorm.DB) error {
	if err := tx.Where("1 = 1").Delete(&models.PropertyImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("1 = 1").Delete(&models.Property{}).Error; err != nil {
		return err
	}
	return tx.Where("1 = 1").Delete(&models.Location{}).Error
}

// seedLocations gets or creates a location per row and returns a
// case-insensitive name lookup map for the property phase.
func (imp *Importer) seedLocations(tx *gorm.DB, t *table) (map[string]*models.Location, error) {
	out := make(map[string]*models.Location)
	for i, row := range t.rows {
		line := i + 2
		name := get(row, "name")
		if name == "" {
			return nil, rowErrorf(t.file, line, "'name' is required")
		}

		// get-or-create avoids duplicates when re-seeding without clear
		loc, err := database.GetOrCreateLocation(tx, name)
		if err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = loc
	}
	return out, nil
}

// seedProperties upserts a property per row keyed by external_id and returns
// an external_id lookup map for the image phase.
func (imp *Importer) seedProperties(tx *gorm.DB, t *table, locations map[string]*models.Location) (map[string]*models.Property, error) {
	out := make(map[string]*models.Property)
	for i, row := range t.rows {
		line := i + 2
		externalID := get(row, "external_id")
		locationName := get(row, "location_name")
		if externalID == "" {
			return nil, rowErrorf(t.file, line, "'external_id' is required")
		}
		if locationName == "" {
			return nil, rowErrorf(t.file, line, "'location_name' is required")
		}

		loc, ok := locations[strings.ToLower(locationName)]
		if !ok {
			return nil, rowErrorf(t.file, line,
				"unknown location_name='%s'. Add it to the locations input.", locationName)
		}

		p := &models.Property{
			ExternalID:   externalID,
			LocationID:   loc.ID,
			PropertyName: get(row, "property_name"),
			Country:      get(row, "country"),
			Address:      get(row, "address"),
			Title:        get(row, "title"),
			Description:  get(row, "description"),
		}
		if _, err := database.UpsertProperty(tx, p); err != nil {
			return nil, err
		}
		out[externalID] = p
	}
	return out, nil
}

// seedImages stages image bytes and creates image rows. Identical existing
// images (same property, alt text and primary flag) are skipped as a no-op;
// a second in-batch primary for the same property fails the whole run.
func (imp *Importer) seedImages(tx *gorm.DB, t *table, baseDir string, properties map[string]*models.Property, staging *media.Staging) (int, int, error) {
	primarySeen := make(map[string]int)
	created := 0
	skipped := 0

	for i, row := range t.rows {
		line := i + 2
		propExt := get(row, "property_external_id")
		filePath := get(row, "file_path")
		altText := get(row, "alt_text")

		if propExt == "" {
			return 0, 0, rowErrorf(t.file, line, "'property_external_id' is required")
		}
		if filePath == "" {
			return 0, 0, rowErrorf(t.file, line, "'file_path' is required")
		}

		prop, ok := properties[propExt]
		if !ok {
			return 0, 0, rowErrorf(t.file, line,
				"unknown property_external_id='%s'. Add it to the properties input.", propExt)
		}

		isPrimary, err := parseBool(row["is_primary"])
		if err != nil {
			return 0, 0, rowErrorf(t.file, line, "%v", err)
		}

		// Batch-level invariant, separate from the per-row check at write time
		if isPrimary {
			primarySeen[propExt]++
			if primarySeen[propExt] > 1 {
				return 0, 0, rowErrorf(t.file, line,
					"property '%s' has more than one primary image", propExt)
			}
		}

		src := filePath
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		info, err := os.Stat(src)
		if err != nil {
			return 0, 0, rowErrorf(t.file, line, "file not found: '%s' (resolved to %s)", filePath, src)
		}
		if info.IsDir() {
			return 0, 0, rowErrorf(t.file, line, "file_path points to a directory: %s", src)
		}

		// Re-importing the same CSV must not duplicate identical entries.
		// The heuristic is intentionally simple: property + alt_text + is_primary.
		existing, err := database.FindImageByHeuristic(tx, prop.ID, altText, isPrimary)
		if err != nil {
			return 0, 0, err
		}
		if existing != nil {
			skipped++
			continue
		}

		relPath := media.ImagePath(prop.ExternalID, filepath.Base(src))
		if err := staging.Add(src, relPath); err != nil {
			return 0, 0, err
		}

		img := &models.PropertyImage{
			PropertyID: prop.ID,
			ImagePath:  relPath,
			IsPrimary:  isPrimary,
			AltText:    altText,
		}
		if err := database.SavePropertyImage(tx, img); err != nil {
			return 0, 0, err
		}
		created++
	}

	return created, skipped, nil
}

// writeLog records the run outside the import transaction so failed runs are
// visible too.
func (imp *Importer) writeLog(result *Result, startedAt time.Time, runErr error, rolledBack bool) {
	entry := &models.ImportLog{
		RunID:      result.RunID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Locations:  result.Locations,
		Properties: result.Properties,
		Images:     result.Images,
		Skipped:    result.Skipped,
		Cleared:    result.Cleared,
		Status:     models.ImportStatusSucceeded,
	}
	if runErr != nil {
		entry.Status = models.ImportStatusFailed
		entry.Error = runErr.Error()
	}
	if rolledBack {
		// The in-transaction counts never committed
		entry.Locations, entry.Properties, entry.Images, entry.Skipped = 0, 0, 0, 0
	}
	if err := imp.db.DB().Create(entry).Error; err != nil {
		log.Printf("Importer: Failed to write import log: %v", err)
	}
}
