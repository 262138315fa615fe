// Package confloader provides configuration loading for respkv.
//
// It uses koanf to merge, from lowest to highest priority:
//
//  1. Default values (already present in the target struct)
//  2. A YAML configuration file
//  3. Environment variables (RESPKV_ prefix, "__" between levels)
//  4. Command-line flags, passed in as a flat map
//
// Watcher reports writes to the configuration file so a running
// process can re-apply settings that support it.
package confloader
