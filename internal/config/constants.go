package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultHost is the listen address when authentication is enabled
	DefaultHost = "0.0.0.0"

	// LoopbackHost is the listen address when AUTH_MODE=none and HOST is unset.
	// Anyone who can reach the port may edit the catalog in that mode.
	LoopbackHost = "127.0.0.1"

	// DefaultSeedPath is where the seed command looks for books by default
	DefaultSeedPath = "./data/books.json"
)
