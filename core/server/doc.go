// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure: listen port, the admin API key and the CORS origins
// allowed to call the public vote endpoint from the website.
package server
