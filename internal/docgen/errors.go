package docgen

import "fmt"

// LoadError means the template bytes are not a readable document package
// (broken archive or missing main document part). Fatal for the attempt.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template load failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("template load failed: %s", e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SyntaxError means a placeholder token in the template is malformed or has
// been split across formatting runs by the authoring tool. The message names
// the token and tells the template author how to fix it.
type SyntaxError struct {
	Token  string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("placeholder syntax error: %s: %s", e.Token, e.Reason)
	}
	return fmt.Sprintf("placeholder syntax error: %s", e.Reason)
}
