package actions

// A Result is the uniform outcome of every authentication flow.
//
// Exactly one of the two arms is populated: a bare success, or an error
// message optionally attributed to the form field that caused it. Field,
// when set, names a key of the flow's request schema.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Field   string `json:"field,omitempty"`
}

func ok() Result { return Result{Success: true} }

func fail(msg string) Result { return Result{Error: msg} }

func failField(field, msg string) Result { return Result{Error: msg, Field: field} }
