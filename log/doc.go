// Package log provides the leveled, printf-style logger used by medgraph.
//
// Library packages log through the package-level functions (Debug, Info,
// Warn, Error), which forward to a replaceable default logger. The default
// writes to stderr at info level; the medgraph CLI swaps in a GologLogger:
//
//	logger := log.NewCLILogger(os.Stderr, log.LogLevelDebug)
//	log.SetDefaultLogger(logger)
//
// Expected fallbacks (a failing entity recognizer, a skipped corpus file)
// are logged at debug or warn. Errors that abort a build are returned, not
// only logged.
package log
