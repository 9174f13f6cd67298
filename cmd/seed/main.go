package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/config"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/repository"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/catalog"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/db"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/storage"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
)

func main() {
	assumeYes := flag.Bool("yes", false, "import without asking for confirmation")
	flag.Usage = func() {
		fmt.Println("Usage: seed [-yes] <xlsx_file_path | s3://bucket/key>")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		log.Fatal("missing catalog source")
	}
	source := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var objects *storage.S3Storage
	if _, _, ok := storage.ParseObjectURI(source); ok {
		objects, err = storage.NewS3Storage(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey)
		if err != nil {
			log.Fatal("Failed to configure S3:", err)
		}
	}

	fmt.Printf("Reading catalog: %s\n", source)
	reader, err := storage.OpenSource(ctx, objects, source)
	if err != nil {
		log.Fatal("Failed to open catalog:", err)
	}
	products, stats, err := catalog.ReadProducts(reader)
	reader.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Rows: %d, skipped: %d, duplicate SKUs: %d\n", stats.Rows, stats.Skipped, stats.Duplicates)
	fmt.Printf("Total products to import: %d\n", len(products))

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	productService := service.NewProductService(repository.NewProductRepository(db.GetDB()))
	written, err := productService.ImportProducts(ctx, products)
	if err != nil {
		log.Fatalf("Import failed after %d products: %v", written, err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", written)
}
