package dvload

// Logger receives progress of a load run. The loader logs one line per step
// at Info level and per-table detail at Verbose level.
//
// Implementations must be safe for concurrent use.
type Logger interface {
	// Verbose is only shown with -v.
	Verbose(format string, args ...interface{})

	Info(format string, args ...interface{})

	Error(format string, args ...interface{})
}
