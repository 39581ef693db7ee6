// Package database provides the SQLite store backing the commissioning
// capture.
//
// The router itself is stateless across restarts; this database holds
// diagnostics only: traffic statistics and unmapped entity IDs recorded
// by the capture package. It is safe to delete between shows.
package database
