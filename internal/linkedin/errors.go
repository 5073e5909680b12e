package linkedin

import "fmt"

type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrNoCode is returned when a callback arrives without an
	// authorization code
	ErrNoCode Error = "no code received"

	// ErrNoPostID is returned when post creation succeeds but the provider
	// response carries no post id
	ErrNoPostID Error = "no post id in create response"
)

// Publish workflow step labels. The publish operation fails fast at the
// first failing step; the label tells the caller which one.
const (
	StepRegister = "Step 1"
	StepUpload   = "Step 2"
	StepCreate   = "Step 3"
)

// UpstreamError is returned whenever an outbound call to LinkedIn comes
// back with a non-success status. The upstream body is carried verbatim
// and the call is never retried.
type UpstreamError struct {
	// Step identifies the failing publish step, empty for calls outside
	// the publish workflow (token exchange, userinfo)
	Step string

	StatusCode int

	// Body is the upstream response body, unmodified
	Body string
}

func (e *UpstreamError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("upstream rejection (%d): %s", e.StatusCode, e.Body)
	}

	return fmt.Sprintf("%s Failed (%d): %s", e.Step, e.StatusCode, e.Body)
}
