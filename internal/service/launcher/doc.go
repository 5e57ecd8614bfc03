// Package launcher runs the installed typr executable as a transparent proxy.
//
// Run locates the executable next to the launcher's own binary, starts it with
// the launcher's arguments and standard streams, forwards termination requests
// while it runs and reports how it ended. Relay then ends the launcher the same
// way: with the child's exit code, or by re-raising the child's fatal signal.
package launcher
