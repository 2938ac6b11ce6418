package logging

// Discard drops everything. Used when a caller does not supply a logger.
var Discard Logger = discard{}

type discard struct{}

func (discard) Info(string, ...interface{})  {}
func (discard) Debug(string, ...interface{}) {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}

// OrDiscard returns l, or Discard when l is nil.
func OrDiscard(l Logger) Logger {
	if l == nil {
		return Discard
	}
	return l
}
