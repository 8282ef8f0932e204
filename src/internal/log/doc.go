// Package log provides leveled logging for keen-dhcp.
//
// The package exposes global printf-style functions backed by
// github.com/charmbracelet/log, so call sites never hold a logger value.
//
// # Log Levels
//
//   - DEBUG: Detailed diagnostic information (only shown in verbose mode)
//   - INFO: General informational messages
//   - WARN: Warning messages, e.g. a source reload that was rejected
//   - ERROR: Error messages, always written to stderr
//
// # Example Usage
//
//	log.Infof("Listening on %s", addr)
//	log.Warnf("Keeping previous inventory: %v", err)
//
//	log.SetVerbose(true)
//	log.Debugf("Snapshot: %d servers", len(snap.Servers))
//
// Structured fields:
//
//	log.With("status", 200, "path", r.URL.Path).Info("request")
//
// Output control:
//
//	log.SetForceStdErr(true) // Send all logs to stderr
package log
