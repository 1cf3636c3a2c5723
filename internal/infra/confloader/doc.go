// Package confloader layers configuration sources with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (AUTHCLIENT_SECTION_KEY -> section.key)
//  3. Configuration file (YAML)
//  4. Default values (WithDefaults)
//
// Watcher reports edits to a config file so a long-running process can
// reload it.
package confloader
