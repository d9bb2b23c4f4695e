// Package store persists fit results.
//
// A Document is a YAML rendering of one fit.Run: the shared settings plus,
// per problem, its key, final status, observed and fitted series, and the
// full iteration history in the solver's record layout
// [χ², λ, p0, σp0, p1, σp1, ...]. An xxhash64 checksum over the numeric
// content guards against truncated or edited files.
//
// Files may be stored plain or compressed with zstd, lz4 or s2. Save picks
// the codec from the file extension (.zst, .lz4, .s2); Load detects it from
// the stream magic, so a renamed file still loads.
package store
