package employee

import "errors"

var (
	ErrNotFound          = errors.New("employee not found")
	ErrDuplicateExternal = errors.New("employee id already in use")
)
