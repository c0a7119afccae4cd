// Package queue persists summarization jobs in SQLite and enforces their
// lifecycle: queued -> running -> done | failed.
//
// The Store is the only coordination medium between the CLI, the daemon
// controller, and worker processes; every mutation is a single atomic
// statement so independent OS processes can share the database file safely
// under WAL mode. Claiming uses UPDATE..RETURNING so two racing workers
// resolve to exactly one winner. Jobs are never deleted by the core; the
// table doubles as processing history for status output.
package queue
