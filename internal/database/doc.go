// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into entity-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Books plus their book_topics/book_authors link rows
//	├── topics/          # Topics, topic slugs, orphan topic detection
//	├── authors/         # Author get-or-create, orphan author detection
//	└── audit/           # Audit trail of maintainer writes
//
// # Using Sub-packages
//
// Repositories are thin wrappers over a *gorm.DB. Inside a transaction they are
// built on the transaction handle so every statement joins the same unit of work:
//
//	err := db.DB.Transaction(func(tx *gorm.DB) error {
//		bookRepo := books.NewRepository(tx)
//		authorRepo := authors.NewRepository(tx)
//		...
//	})
//
// # Integrity
//
// No foreign key cascades are declared. Orphan rows are found with
// OrphanIDs-style queries and removed with DeleteByIDs, always over an explicit
// id set, by the catalog package.
package database
