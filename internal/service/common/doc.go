// Package common holds helpers shared by several services.
//
// It looks up running processes by executable name so the installer can warn
// before it replaces a binary that is still in use.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
