package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type unknownTagError struct {
	tag         string
	suggestions []string
}

func (e unknownTagError) Error() string {
	if len(e.suggestions) == 0 {
		return fmt.Sprintf("unknown tag: %s", e.tag)
	}
	return fmt.Sprintf("unknown tag: %s (did you mean %v?)", e.tag, e.suggestions)
}
