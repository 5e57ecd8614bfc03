// Package platform maps raw host identifiers to the supported release targets
// and derives the names that installer and launcher share: the release asset
// file name and the installed executable name.
package platform
