// Package api exposes the DeepTattoo REST surface under /api: auth, the
// design lifecycle, the public gallery, the style catalog and the user
// profile. Handlers decode and validate requests, call into package
// service, and map service errors to status codes through
// MapErrorToStatusCode so that internal details never reach a client.
package api
