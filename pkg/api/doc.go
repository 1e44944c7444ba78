// Package api provides the HTTP surface of the orchestration layer.
//
// It exposes three operational endpoints on top of an Orchestrator:
//
//   - POST /v1/generate     submit a prompt, optionally pinned to a provider
//   - GET  /v1/providers    adapter descriptions with a health snapshot
//   - POST /v1/cache/clear  drop cached responses, optionally by scope
//
// NewRouter assembles these together with liveness, readiness, version, and
// metrics endpoints, wrapped in the standard middleware chain
// (recovery, logging, request ID, CORS, per-request timeout).
package api
