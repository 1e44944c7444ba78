// Ganymede is an AI provider orchestration layer.
//
// It fronts multiple AI backends (Anthropic, OpenAI, and any
// OpenAI-compatible server) behind a single generate operation with
// response caching, health-ranked provider selection, retries with
// backoff, and automatic fallback.
//
// Usage:
//
//	# Start the HTTP service with default configuration
//	ganymede run
//
//	# Start with a custom configuration file
//	ganymede run --config /path/to/config.yaml
//
//	# Validate configuration, optionally probing provider connectivity
//	ganymede validate --check-providers
//
//	# List configured providers
//	ganymede providers
//
//	# Export or prune the usage log
//	ganymede usage export --format csv --output usage.csv
//	ganymede usage prune --days 30
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}
