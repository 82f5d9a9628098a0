// Package snapshot persists and restores the whole account: balance,
// credential hash and transaction log.
//
// Backends:
//
//   - FileRepository: one JSON document replaced atomically on every save.
//   - SQLRepository: SQLite or PostgreSQL via goose-managed schema; the log
//     is append-only on disk.
//   - MemoryRepository: in-process store with failure injection for tests.
//
// Contract shared by all backends:
//
//   - Load returns (nil, nil) when nothing has been stored yet.
//   - Unreadable or invalid stored data yields an error wrapping
//     common.ErrCorruptState. It is never treated as empty.
//   - Save failures wrap common.ErrIO, and a failed Save leaves the
//     previously stored snapshot intact.
package snapshot
