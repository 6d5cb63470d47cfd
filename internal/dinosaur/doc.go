// Package dinosaur is an HTTP client for the dinosaur DNS proxy API.
//
// Three endpoints are used:
//
//   - GET /log: server-sent event stream of query records (Subscribe)
//   - POST /api: JSON-RPC 2.0 service "api" (Call, FetchConfig,
//     FetchCacheEntries, FetchBlockListCount), encoded with gorilla/rpc json2
//   - GET /ping: liveness probe answering PONG (Ping)
//
// The api bind address defaults to 127.0.0.1:8553 and accepts either a bare
// host:port or a full URL. Request/response calls use a 5 second timeout;
// the event stream has none and ends when its context is cancelled.
//
// Errors are wrapped with the step that failed ("execute request: ...",
// "api /api returned status 500", "decode api.Config response: ..."). JSON-RPC error
// objects come back as *RPCError so callers can inspect the code.
package dinosaur
