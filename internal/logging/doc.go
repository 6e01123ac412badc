// Package logging implements dvload.Logger.
//
//   - ConsoleLogger writes progress and errors to stderr (or any io.Writer)
//   - NullLogger discards everything
//
// Both are safe for concurrent use.
package logging
