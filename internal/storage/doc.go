// Package storage provides key-value storage engines for authclient.
//
// The session store persists two values per API origin (bearer token and
// serialized user). Those values must be written and removed together, so
// every engine supports an atomic Batch and a consistent multi-key read.
//
// Engines:
//
//   - Badger: embedded, durable, the default for a local profile
//   - Redis: shared storage for profiles used from several hosts
//   - memory: ephemeral, for tests and throwaway sessions
package storage
