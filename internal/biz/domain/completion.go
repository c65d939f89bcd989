package domain

import "errors"

// Mode selects how a prompt is assembled and sampled
type Mode string

const (
	ModeReply   Mode = "reply"
	ModeSpeakUp Mode = "speak-up"
)

// ErrEmptyCompletion is returned when the model produced no usable text
var ErrEmptyCompletion = errors.New("empty completion")

// PromptMessage is one role-tagged message sent to the completion API
type PromptMessage struct {
	Role    Role
	Content string
}

// CompletionRequest is an outbound completion call
type CompletionRequest struct {
	Model       string
	Messages    []PromptMessage
	MaxTokens   int
	Temperature float32
}

// Completion is the result of a completion call: either Text or Err is set
type Completion struct {
	Text string
	Err  error
}

// CompletionOK creates a successful completion
func CompletionOK(text string) Completion {
	return Completion{Text: text}
}

// CompletionFailed creates a failed completion
func CompletionFailed(err error) Completion {
	if err == nil {
		err = ErrEmptyCompletion
	}
	return Completion{Err: err}
}

// OK reports whether the completion produced text
func (c Completion) OK() bool {
	return c.Err == nil && c.Text != ""
}
