// Package memory provides the in-memory key-value store of respkv.
//
// Thread Safety:
//
// A single RWMutex guards the map. Get and Len take the read lock,
// Set takes the write lock, and nothing but the map access itself runs
// while a lock is held.
package memory
