// Package backend is the HTTP client for the Trailarr REST API.
//
// Every call is context aware, carries an X-Request-ID correlation header,
// and hands the response body to package api for normalization. Failures
// are classified with the services markers: transport problems wrap
// services.ErrTransport (see IsUnavailable), non-2xx answers and bodies
// carrying an "error" field return *APIError, and undecodable bodies wrap
// services.ErrMalformed.
package backend
