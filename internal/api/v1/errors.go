package v1

import (
	"github.com/danielgtaylor/huma/v2"
)

// ErrorModel is the error envelope of the API: the same {success, message,
// error} shape the store's consumers render. Registered as huma's error
// model so every handler failure serializes consistently.
type ErrorModel struct {
	Success bool   `json:"success" doc:"Always false for errors"`
	Message string `json:"message" doc:"Human-readable error description"`
	Detail  string `json:"error,omitempty" doc:"Underlying error detail"`

	status int
}

func (e *ErrorModel) Error() string { return e.Message }

func (e *ErrorModel) GetStatus() int { return e.status }

func init() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		detail := ""
		if len(errs) > 0 && errs[0] != nil {
			detail = errs[0].Error()
		}
		return &ErrorModel{
			Success: false,
			Message: message,
			Detail:  detail,
			status:  status,
		}
	}
}
