package students

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by a Table when no record matches the id.
	ErrNotFound = errors.New("aluno não encontrado")
	// ErrDuplicateCode is returned by a Table when the registration code is taken.
	ErrDuplicateCode = errors.New("matrícula já cadastrada")
)

// ValidationError is a schema rejection. Fields maps the JSON field name to its message.
type ValidationError struct {
	Fields   map[string]string
	messages []string
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
	e.messages = append(e.messages, msg)
}

// First returns the first message in field declaration order.
func (e *ValidationError) First() string {
	if len(e.messages) == 0 {
		return ""
	}
	return e.messages[0]
}

func (e *ValidationError) Error() string {
	return strings.Join(e.messages, "; ")
}

// PersistenceError wraps any failure reported by the Table.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a schema rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err came from the Table.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
