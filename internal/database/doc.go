// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (SQLite or Postgres), migrations
//	├── books/           # Owner-scoped book CRUD
//	├── users/           # Account lookup and creation
//	└── tokens/          # Revoked bearer tokens
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.Open(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	list, err := booksRepo.ListForUser(ctx, userID)
//
// # Interface Implementations
//
//   - books.Repository: implements library.Store
//   - users.Repository: implements auth.UserStore
//   - tokens.Repository: implements auth.RevocationStore
//
// Add a compile-time interface check next to each implementation:
//
//	var _ library.Store = (*Repository)(nil)
package database
