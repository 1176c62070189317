// Package store provides SQLite-backed history of harness runs.
//
// Persistence is opt-in: a run is recorded only when the caller opens a
// store and hands it the finished report. Two tables are kept:
//   - runs: one row per harness run (compiler, compile outcome, counts)
//   - checks: one row per check of a run, in execution order
//
// Failure lists and source lists are stored as canonical JSON arrays so
// identical runs produce identical rows.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads while a run is being recorded
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait on lock contention instead of failing
//   - foreign_keys=ON: checks rows cascade with their run
package store
