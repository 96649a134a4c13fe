// Package models defines the JSON documents shared by the command-line
// front end (-json output) and the HTTP server.
package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 that survives JSON encoding when it is not finite.
// Finite values are written as numbers; NaN and the infinities are written
// as the strings "NaN", "+Inf" and "-Inf".
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// AccelerationReport is the outcome of one run of one runner on one problem.
type AccelerationReport struct {
	Problem    string `json:"problem"`
	Runner     string `json:"runner"`
	Value      Float  `json:"value"`
	Limit      Float  `json:"limit"`
	AbsError   Float  `json:"abs_error"`
	Iterations uint64 `json:"iterations"`
	Converged  bool   `json:"converged"`
	Degenerate bool   `json:"degenerate,omitempty"`
	Budget     uint64 `json:"budget"`
	Policy     string `json:"policy"`
	Duration   string `json:"duration"`
	Error      string `json:"error,omitempty"`
}

// SweepRow compares the accelerated and the plain value of a problem for
// one budget.
type SweepRow struct {
	Budget      uint64 `json:"budget"`
	Accelerated Float  `json:"accelerated"`
	Plain       Float  `json:"plain"`
	// AcceleratedError and PlainError are absolute distances to the known
	// limit.
	AcceleratedError Float `json:"accelerated_error"`
	PlainError       Float `json:"plain_error"`
}

// SweepReport is a budget sweep of one problem.
type SweepReport struct {
	Problem string     `json:"problem"`
	Limit   Float      `json:"limit"`
	Rows    []SweepRow `json:"rows"`
}

// ProblemInfo describes a catalogue entry.
type ProblemInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
	Form  string `json:"form"`
	Limit Float  `json:"limit"`
}
