// Package repositories implements SQLite persistence for the client's local state.
//
// The only state the client keeps between runs is the session credential and a
// short search history; everything else is owned by the backend.
//
// Key Implementations:
//   - [CredentialRepository] : key/value credential storage; the bearer token lives under [TokenKey]
//   - [SearchHistoryRepository] : append-only log of submitted search keywords
//
// Tables are created by the embedded migrations in the shared package.
package repositories
