// Command tubewise summarizes video content into structured notes.
// It runs the pipeline inline for one-off use, or enqueues jobs into a
// durable SQLite queue processed by a background worker daemon.
package main
