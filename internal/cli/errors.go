package cli

import (
	"errors"
	"fmt"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/format"
	"trustdesk-cli/internal/model"

	"github.com/spf13/cobra"
)

// reportedError marks an error that was already written to stderr.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// IsReported tells main whether err still needs printing.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func errUsage(msgf string, args ...any) error {
	return usageError{msg: fmt.Sprintf(msgf, args...)}
}

type errorBody struct {
	Kind      string              `json:"kind"`
	Message   string              `json:"message"`
	Status    int                 `json:"status,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
	Hint      string              `json:"hint,omitempty"`
}

func describeError(err error) errorBody {
	var ae *api.Error
	var ie *model.InputError
	if !errors.As(err, &ae) && !errors.As(err, &ie) {
		var ue usageError
		if errors.As(err, &ue) {
			return errorBody{Kind: "usage", Message: ue.msg}
		}
		return errorBody{Kind: "error", Message: err.Error()}
	}
	c := api.Classify(err)
	body := errorBody{
		Kind:      string(c.Kind),
		Message:   api.Message(c),
		Status:    c.Status,
		Fields:    c.Fields,
		RequestID: c.RequestID,
	}
	if c.Kind == api.KindAuth {
		body.Hint = "run `trustdesk login` to sign in"
	}
	return body
}

// writeErr prints err as a JSON error document on stderr.
func writeErr(cmd *cobra.Command, err error) error {
	if err == nil || IsReported(err) {
		return err
	}
	_ = format.WriteJSON(cmd.ErrOrStderr(), map[string]any{"error": describeError(err)}, false)
	return reportedError{err: err}
}
