// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation for the admin route group.
//   - rayid: assigns each request a ray id, stores it in fiber locals and
//     echoes it in the X-Ray-ID response header for tracing.
//
// The vote endpoint is public, so auth is only mounted on the admin group.
package middleware
