package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrInvalidValue = fmt.Errorf("invalid value")
var ErrNotFound = fmt.Errorf("not found")
var ErrBadRequest = fmt.Errorf("bad request")
var ErrUnauthorized = fmt.Errorf("unauthorized")
var ErrUnavailable = fmt.Errorf("unavailable")
var ErrInternal = fmt.Errorf("internal error")
var ErrRequest = fmt.Errorf("request error")
var ErrBadResponse = fmt.Errorf("bad response")

type dbError struct {
	msg    string
	target error
}

func (e dbError) Error() string        { return e.msg }
func (e dbError) Is(target error) bool { return target == e.target }

func NewInvalidValueError(msg string) error {
	return &dbError{
		msg:    msg,
		target: ErrInvalidValue,
	}
}

func NewNotFoundError(msg string) error {
	return &dbError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewBadRequestError(msg string) error {
	return &dbError{
		msg:    msg,
		target: ErrBadRequest,
	}
}

func NewUnauthorizedError(msg string) error {
	return &dbError{
		msg:    msg,
		target: ErrUnauthorized,
	}
}

func NewUnavailableError(msg string) error {
	return &dbError{
		msg:    msg,
		target: ErrUnavailable,
	}
}

// Error codes used in the wire error envelope
const (
	CodeInstanceNotFound  string = "instance not found"
	CodeInvalidExpression string = "invalid expression"
	CodeValidationFailed  string = "validation failed"
	CodeUnauthorized      string = "unauthorized"
	CodeUnavailable       string = "unavailable"
	CodeInternalError     string = "internal error"
)

// QueryError is a single entry in the error envelope that the database
// returns alongside a non 2xx status code
type QueryError struct {
	Position    []any  `json:"position"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type errorEnvelope struct {
	Errors []QueryError `json:"errors"`
}

// NewErrorFromQueryErrors parses an error envelope received from the
// database and maps it onto the error taxonomy above
func NewErrorFromQueryErrors(code int, body []byte) error {
	envelope := &errorEnvelope{}

	err := json.Unmarshal(body, envelope)
	if err != nil || len(envelope.Errors) == 0 {
		return fmt.Errorf("[code: %d] response is not a valid error envelope (%w)", code, ErrBadResponse)
	}

	first := envelope.Errors[0]

	if code == http.StatusNotFound || first.Code == CodeInstanceNotFound {
		return NewNotFoundError(first.Description)
	}

	if code == http.StatusUnauthorized || first.Code == CodeUnauthorized {
		return NewUnauthorizedError(first.Description)
	}

	if first.Code == CodeInvalidExpression || first.Code == CodeValidationFailed {
		return NewBadRequestError(first.Description)
	}

	if code == http.StatusServiceUnavailable || first.Code == CodeUnavailable {
		return NewUnavailableError(first.Description)
	}

	return &dbError{
		msg: fmt.Sprintf("[code: %d] query failed with code \"%s\" and description \"%s\"",
			code, first.Code, first.Description,
		),
		target: ErrInternal,
	}
}

const ErrorResponseContentType string = "application/json"

// WriteQueryError renders err as a wire error envelope on w, choosing the
// response status and error code from the error's target
func WriteQueryError(w http.ResponseWriter, position []any, err error) {
	status := http.StatusInternalServerError
	code := CodeInternalError

	if errors.Is(err, ErrNotFound) {
		status = http.StatusNotFound
		code = CodeInstanceNotFound
	} else if errors.Is(err, ErrUnauthorized) {
		status = http.StatusUnauthorized
		code = CodeUnauthorized
	} else if errors.Is(err, ErrInvalidValue) || errors.Is(err, ErrBadRequest) {
		status = http.StatusBadRequest
		code = CodeValidationFailed
	} else if errors.Is(err, ErrUnavailable) {
		status = http.StatusServiceUnavailable
		code = CodeUnavailable
	}

	if position == nil {
		position = []any{}
	}

	envelope := errorEnvelope{
		Errors: []QueryError{
			{Position: position, Code: code, Description: err.Error()},
		},
	}

	w.Header().Add("Content-Type", ErrorResponseContentType)
	w.WriteHeader(status)

	b, err := json.Marshal(&envelope)
	if err == nil {
		w.Write(b)
	}
}
