// Package integration holds end-to-end tests that install a release from a
// local HTTPS host and run it through the launcher.
package integration
