// Package store is the transactional repository over workspaces, papers,
// notes, and the full-text search index.
//
// The store exclusively owns write access to all persisted entities and
// is the only component permitted to open a transaction spanning more
// than one of them. Key invariants it protects:
//
//   - At most one paper row per distinct file hash OR path within the
//     dataset; import deduplicates against both, hash match winning.
//   - For every live note, exactly one search_index entry whose content
//     is the tokenized form of the note's current content. Entries are
//     maintained inside the same transaction as the note mutation, so
//     the index never drifts from committed note state.
//   - The default workspace always exists and cannot be deleted.
//
// # Concurrency
//
// One SQLite handle, serialized behind a single mutex: every operation
// holds the lock for its full duration, so transactions never interleave
// within the process. Any failure rolls the whole unit back before the
// lock is released.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: cascading deletes workspace → paper → note
//
// The search index is an FTS5 virtual table; build with the sqlite3
// driver's sqlite_fts5 tag enabled.
package store
