// Package daemonctl starts, stops, and inspects the worker daemon from
// the CLI side. The daemon advertises itself through a registry file
// holding the controller pid and the pids of its workers; liveness is
// judged by signalling pid 0, never by the file's presence alone.
package daemonctl
