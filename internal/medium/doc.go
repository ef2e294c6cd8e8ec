// Package medium owns the shared transmission channel that stations contend for.
//
// Ownership boundary:
// - idle/busy carrier flag
// - last placed frame payload
//
// Every operation is a single load or store. Nothing here serializes a
// station's mark/hold/verify sequence, so concurrent writers overwrite each
// other and that overwrite is what stations observe as a collision.
package medium
