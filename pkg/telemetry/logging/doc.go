// Package logging configures structured logging for Ganymede.
//
// Setup builds a log/slog logger from configuration (level, json or text
// format) and installs it as the process default. When secret redaction
// is enabled the handler scrubs API keys, bearer tokens, and password
// fields from messages and string attributes before they are written.
//
// Packages log through the default logger, usually via a component child:
//
//	log := logging.Component("orchestrator")
//	log.Info("provider selected", "provider", id)
//
// Context helpers carry request-scoped fields (request ID, provider,
// cache scope) through the call chain; ContextAttrs turns them back into
// log attributes.
package logging
