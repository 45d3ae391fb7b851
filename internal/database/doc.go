// Package database opens the library store and migrates its schema.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Driver selection (sqlite/postgres), migrations
//	├── books/           # The books Repository: lookups, search, ordering, aggregates, writes
//	├── audit/           # Audit event persistence
//	└── settings/        # Key/value application settings
//
// # Using Sub-packages
//
// The *gorm.DB handle is created once and passed into every repository:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	settingsRepo := settings.NewRepository(db.DB)
//
//	book, err := booksRepo.GetByTitle("Dune")
//
// There is no package-level connection; tests open their own database per test.
package database
