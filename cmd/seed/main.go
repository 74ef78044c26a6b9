package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"property-catalog/internal/config"
	"property-catalog/internal/database"
	"property-catalog/internal/importer"
	"property-catalog/internal/media"

	"github.com/joho/godotenv"
)

// seed loads locations, properties and images from CSV files into the
// database and copies image bytes into the media root. The whole run is
// all-or-nothing: any invalid row rolls back every change.
func main() {
	base := flag.String("base", "seed_data", "Base folder containing CSV files")
	locationsFile := flag.String("locations", importer.DefaultLocationsFile, "Locations CSV filename inside base")
	propertiesFile := flag.String("properties", importer.DefaultPropertiesFile, "Properties CSV filename inside base")
	imagesFile := flag.String("images", importer.DefaultImagesFile, "Images CSV filename inside base")
	clear := flag.Bool("clear", false, "Danger: clears existing locations/properties/images before seeding")
	configPath := flag.String("config", "config.yaml", "Configuration file path")
	flag.Parse()

	_ = godotenv.Load()

	appConfig, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(appConfig.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	if err := os.MkdirAll(appConfig.Media.Root, 0o755); err != nil {
		log.Fatalf("Failed to create media root: %v", err)
	}
	store := media.NewStore(appConfig.Media.Root)

	result, err := importer.New(db, store).Run(importer.Options{
		BaseDir:        *base,
		LocationsFile:  *locationsFile,
		PropertiesFile: *propertiesFile,
		ImagesFile:     *imagesFile,
		Clear:          *clear,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeding completed: %d locations, %d properties, %d images (%d skipped)\n",
		result.Locations, result.Properties, result.Images, result.Skipped)
}
