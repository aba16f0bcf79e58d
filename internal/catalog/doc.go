// Package catalog finds library definitions by name. Definitions come from
// an ordered list of sources: the user's catalog directory, the synced
// catalog repository and the definitions bundled with the binary. The first
// source holding a definition wins. It also clones and updates the catalog
// repository and tracks its freshness.
package catalog
