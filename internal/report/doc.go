// Package report exposes finished sessions: an in-memory session store, the
// HTTP report surface, file export and console tables.
package report
