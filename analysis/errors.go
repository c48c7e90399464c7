package analysis

import "fmt"

// ErrorKind is a dotted-category taxonomy (not a set of Go types): a
// general category plus a specific case.
type ErrorKind string

const (
	KindInvalidNoteName       ErrorKind = "InvalidInput.NoteName"
	KindInvalidChordSymbol    ErrorKind = "InvalidInput.ChordSymbol"
	KindInvalidKeyHint        ErrorKind = "InvalidInput.KeyHint"
	KindRomanRequiresKey      ErrorKind = "InvalidInput.RomanRequiresKey"
	KindInvalidPatternLibrary ErrorKind = "LibraryError.InvalidPatternDefinition"
	KindInvalidCalibration    ErrorKind = "LibraryError.InvalidCalibrationArtifact"
	KindAmbiguousKey          ErrorKind = "AnalysisWarning.AmbiguousKey"
	KindPartialResult         ErrorKind = "AnalysisWarning.PartialResult"
)

// Error is the structured value returned across every fallible pipeline
// boundary: parse errors abort the request, analysis warnings accompany a
// successful result, load errors are fatal at process start.
type Error struct {
	Kind    ErrorKind
	Token   string
	Message string
}

func (e *Error) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (token %q)", e.Kind, e.Message, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Warning is an AnalysisWarning.* value: it accompanies a successful
// Result rather than aborting the request.
type Warning struct {
	Kind    ErrorKind
	Message string
}
