package config

const (
	// DefaultDatabasePath is the default path for the SQLite library database
	DefaultDatabasePath = "./bookworm.db"

	// DefaultOpenLibraryBaseURL is the public OpenLibrary API root
	DefaultOpenLibraryBaseURL = "https://openlibrary.org"
)
