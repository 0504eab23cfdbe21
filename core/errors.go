package core

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Kind classifies a failure for the transport layer; the core never decides
// HTTP statuses itself.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthorization
	KindNotFound
	KindConflict
	KindPersistence
)

const (
	CodeInvalidPayload        = "InvalidPayload"
	CodeInvalidDefinition     = "InvalidDefinition"
	CodeSurveyClosed          = "SurveyClosed"
	CodeSelfResponseForbidden = "SelfResponseForbidden"
	CodeMissingAnswer         = "MissingAnswer"
	CodeUnknownQuestion       = "UnknownQuestion"
	CodeEmptyAnswer           = "EmptyAnswer"
	CodeInvalidOption         = "InvalidOption"
	CodeOutOfRange            = "OutOfRange"
	CodeNotOwner              = "NotOwner"
	CodeNotFound              = "NotFound"
	CodeEmailTaken            = "EmailTaken"
)

// Error is a taxonomy failure returned as a value. Field identifies the
// offending question id or payload field when there is one.
type Error struct {
	Kind    Kind
	Code    string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErr(code, field, msg string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: fmt.Sprintf(msg, args...)}
}

// KindOf classifies any error coming out of the core or the store. Collected
// validation failures classify by their first element; anything foreign is a
// persistence fault.
func KindOf(err error) Kind {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr.Kind
	}

	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		return KindOf(merr.Errors[0])
	}

	return KindPersistence
}

// Leaves flattens err into its individual taxonomy errors, for transport
// layers that want to report every field failure at once.
func Leaves(err error) []*Error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		var out []*Error
		for _, e := range merr.Errors {
			out = append(out, Leaves(e)...)
		}
		return out
	}

	var coreErr *Error
	if errors.As(err, &coreErr) {
		return []*Error{coreErr}
	}
	return nil
}
