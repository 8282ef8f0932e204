// Package commands implements the keen-dhcp subcommands.
//
// Each command implements Runner: Init parses flags, loads and validates the
// configuration and builds the dependencies; Run does the work.
//
//   - server: serve the inventory API until SIGINT/SIGTERM
//   - self-check: read every source once and report what was found
//   - dump: print the aggregated inventory as JSON
package commands
