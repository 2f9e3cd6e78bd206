// Package http implements C7's HTTP surface: POST / for MCP request
// dispatch (streaming SSE or buffered JSON), GET
// /.well-known/oauth-protected-resource[/mcp] for the OAuth 2.0
// Protected Resource Metadata document, and DELETE / for session
// termination. Grounded on this codebase's net/http transport.go/handler.go
// split: transport.go owns the listener and method routing, handler.go
// owns one request's session/auth/dispatch pipeline.
package http
