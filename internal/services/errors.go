package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// Causes carried by *errorx.Error. Their text is the response message.
var (
	ErrUnauthenticated  = errors.New("Unauthenticated.")
	ErrForbidden        = errors.New("Invalid ability provided.")
	ErrPartnerNotFound  = errors.New("Partner not found.")
	ErrMalformedPayload = errors.New("Malformed JSON body.")
)

func errUnauthenticated() error {
	return errorx.Wrap(ErrUnauthenticated, errorx.Authn)
}

func errPartnerNotFound() error {
	return errorx.Wrap(ErrPartnerNotFound, errorx.NotExist)
}

// ValidationError holds every failed rule keyed by field path, e.g. "name"
// or "specialties.0".
type ValidationError struct {
	Errors map[string][]string

	fields []string
}

func (e *ValidationError) Error() string {
	return e.Message()
}

func (e *ValidationError) Add(field, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}
	if _, ok := e.Errors[field]; !ok {
		e.fields = append(e.fields, field)
	}
	e.Errors[field] = append(e.Errors[field], message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Errors) == 0
}

// Message summarizes the errors as "<first message> (and N more errors)",
// first meaning first added.
func (e *ValidationError) Message() string {
	total := 0
	for _, messages := range e.Errors {
		total += len(messages)
	}
	if total == 0 {
		return "The given data was invalid."
	}

	fields := e.fields
	if len(fields) != len(e.Errors) {
		fields = make([]string, 0, len(e.Errors))
		for field := range e.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
	}
	first := e.Errors[fields[0]][0]
	switch rest := total - 1; rest {
	case 0:
		return first
	case 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}
