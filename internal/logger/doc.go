// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder that sends errors to stderr
//     and everything else to stdout,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The installer and the launcher take a context and extract the logger from it.
package logger
