package document

import (
	"errors"

	"github.com/vitohq/docintel/internal/models"
)

// Classified failure codes. The set is closed: anything that is not a
// missing-profile setup error is a generic processing fault.
const (
	CodeProfileNotFound = "PROFILE_NOT_FOUND"
	CodeProcessingError = "PROCESSING_ERROR"
)

// PipelineError tags a pipeline failure with its classified code.
type PipelineError struct {
	Code    string
	Message string
}

func (e *PipelineError) Error() string {
	return e.Code + ": " + e.Message
}

// Classify derives the two-part error descriptor recorded on a failed
// job. Unclassified errors collapse to PROCESSING_ERROR.
func Classify(err error) models.JobError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return models.JobError{Code: pe.Code, Message: pe.Message}
	}
	return models.JobError{Code: CodeProcessingError, Message: err.Error()}
}
