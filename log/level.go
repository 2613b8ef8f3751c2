package log

import "strings"

type LogLevel int

const (
	Debug LogLevel = iota
	Info
	Warn
	Error
)

func (l LogLevel) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Parse maps a case-insensitive level name to a LogLevel. Callers taking
// the name from outside the process (a flag, an env var) should recover
// around this: it panics on an unrecognized name rather than returning an
// error, since a logger's own level is not something a caller can sanely
// default around once misconfigured.
func Parse(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return Debug
	case "INFO":
		return Info
	case "WARN":
		return Warn
	case "ERROR":
		return Error
	default:
		panic("log: unrecognized level " + level)
	}
}
