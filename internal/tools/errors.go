package tools

import "fmt"

// MissingParameterError reports an operation invoked with neither an FQBN
// nor a port, when one of the two is required.
type MissingParameterError struct {
	Op string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("either fqbn or port must be provided for %s", e.Op)
}

// NotFoundError reports a sketch path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sketch %s does not exist", e.Path)
}
