// Package rest is a thin client for REST-like HTTP APIs.
//
// A Request describes one logical call: method, host, already-encoded
// path, headers, query parameters and body. The Client builds the
// absolute URL, assembles and dispatches the call through its HTTP
// transport, and normalizes the raw reply into a Response.
//
// The URL scheme is fixed at construction time: https normally, http
// when the client is built WithTest(true). A server reply that carries
// no body at all normalizes to an empty Reply instead of a Response.
package rest
