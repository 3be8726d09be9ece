package errno

import "fmt"

// code=0   request ok
// code=4xx client errors
// code=5xx server errors
// code=2xxxx business errors

type Errno struct {
	Code    int
	Message string
}

func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrForbidden    = &Errno{Code: 403, Message: "Forbidden"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// Business error codes.
	ErrVideoJobNotFound      = &Errno{Code: 21001, Message: "Video job not found"}
	ErrJobIDRequired         = &Errno{Code: 21004, Message: "Job ID is required"}
	ErrModelIDRequired       = &Errno{Code: 21005, Message: "Model ID is required"}
	ErrPromptRequired        = &Errno{Code: 21006, Message: "Prompt is required"}
	ErrFrameCountOutOfRange  = &Errno{Code: 21007, Message: "Frame count must be between 1 and 20"}
	ErrCfgScaleOutOfRange    = &Errno{Code: 21008, Message: "Cfg scale must be between 2 and 10"}
	ErrDenoisingOutOfRange   = &Errno{Code: 21009, Message: "Denoising must be between 0.1 and 1.0"}
	ErrLengthOutOfRange      = &Errno{Code: 21010, Message: "Length must be between 1 and 20"}
	ErrGeneratorUnknown      = &Errno{Code: 21011, Message: "Unknown generator kind"}
	ErrQueueFull             = &Errno{Code: 21012, Message: "Job queue is full"}
	ErrBackendUnavailable    = &Errno{Code: 21013, Message: "Generation backend unavailable"}
	ErrArtifactMissing       = &Errno{Code: 21014, Message: "Output artifact missing"}
	ErrDuplicateSubmission   = &Errno{Code: 21015, Message: "Duplicate submission already queued"}
	ErrProcessAlreadyRunning = &Errno{Code: 21016, Message: "A process for this job is already running"}
)

// BizError pairs an Errno with the underlying cause.
type BizError struct {
	*Errno
	cause error
}

// NewBizError wraps a cause in a business error code.
func NewBizError(code *Errno, cause error) *BizError {
	return &BizError{Errno: code, cause: cause}
}

func (e *BizError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Errno.Message, e.cause)
	}
	return e.Errno.Message
}

func (e *BizError) Unwrap() error {
	return e.cause
}
