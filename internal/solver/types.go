package solver

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is the body posted to the calculate endpoint.
type Request struct {
	// Image is the canvas as a PNG data URL.
	Image string `json:"image"`
	// Vars are the variable bindings accumulated so far.
	Vars map[string]string `json:"dict_of_vars"`
}

// Result is one solved expression.
type Result struct {
	Expr   Text `json:"expr"`
	Result Text `json:"result"`
	Assign bool `json:"assign"`
}

// Response is the body returned by the calculate endpoint.
type Response struct {
	Message string   `json:"message,omitempty"`
	Type    string   `json:"type,omitempty"`
	Data    []Result `json:"data"`
}

// Text is a string that also accepts JSON numbers and booleans, since
// solvers return evaluated results unquoted.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v.(type) {
	case float64, bool:
		*t = Text(b)
		return nil
	}
	return fmt.Errorf("solver: unsupported value %s", b)
}
