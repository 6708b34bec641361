// Package service implements the DeepTattoo use cases: registration and
// profiles, subscription activation, the style catalog, and the design
// lifecycle from quota admission to gallery listing.
//
// Services depend on the store interfaces, never on postgres directly.
// Writes that span several stores run in one transaction via
// store.RunInTransaction; a new design and its generation task are committed
// together, and the task is handed to the runner only after the commit.
//
// Errors returned to handlers are either sentinel errors of this package
// (ErrDesignNotFound, ErrNotOwned, ErrStyleUnavailable, ...), domain or store
// errors that pass through unchanged, or a *ServiceError wrapping an
// unexpected failure with the operation name.
package service
