// Package log provides a logging abstraction for framebridge components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. A zerolog adapter is the default; a no-op logger
// is provided for tests and for embedding without output.
//
// # Usage
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	logger.Info("frame forwarded", log.Int("bytes", 7), log.Uint16("crc", 0x6578))
//
// Use [ParseLevel] to turn a user supplied level name into a zerolog level
// before building the logger.
package log
