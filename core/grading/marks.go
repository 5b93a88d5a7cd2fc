package grading

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Component maxima.
const (
	MaxMSE   = 20
	MaxTask1 = 4
	MaxTask2 = 4
	MaxTask3 = 2
	MaxSEE   = 100
	MaxCIE   = 2*MaxMSE + MaxTask1 + MaxTask2 + MaxTask3
)

// AbsentSentinel is the numeric form of an absent SEE mark (storage and legacy payloads).
const AbsentSentinel = -1

// AbsentToken is the textual form of an absent SEE mark.
const AbsentToken = "A"

// SEEState tells whether a SEE mark was entered, and how.
type SEEState uint8

const (
	SEEUnset SEEState = iota
	SEEScored
	SEEAbsent
)

// SEEMark is the semester-end exam mark: unset, scored (0-100) or absent.
// The zero value is unset.
type SEEMark struct {
	state SEEState
	score int
}

func Unset() SEEMark { return SEEMark{} }
func Scored(score int) SEEMark { return SEEMark{state: SEEScored, score: score} }
func Absent() SEEMark { return SEEMark{state: SEEAbsent} }

func (m SEEMark) State() SEEState { return m.state }
func (m SEEMark) IsSet() bool { return m.state != SEEUnset }
func (m SEEMark) IsAbsent() bool { return m.state == SEEAbsent }

// Score returns the scored mark, false if the mark is unset or absent.
func (m SEEMark) Score() (int, bool) {
	if m.state != SEEScored {
		return 0, false
	}
	return m.score, true
}

// Valid reports whether a scored mark is within 0-100. Unset and absent marks are always valid.
func (m SEEMark) Valid() bool {
	if m.state != SEEScored {
		return true
	}
	return m.score >= 0 && m.score <= MaxSEE
}

// Int returns the numeric form of the mark: nil when unset, AbsentSentinel when absent.
func (m SEEMark) Int() *int {
	switch m.state {
	case SEEScored:
		score := m.score
		return &score
	case SEEAbsent:
		sentinel := AbsentSentinel
		return &sentinel
	}
	return nil
}

func (m SEEMark) String() string {
	switch m.state {
	case SEEScored:
		return strconv.Itoa(m.score)
	case SEEAbsent:
		return AbsentToken
	}
	return ""
}

// SEEFromInt is the inverse of SEEMark.Int.
func SEEFromInt(v *int) SEEMark {
	switch {
	case v == nil:
		return Unset()
	case *v == AbsentSentinel:
		return Absent()
	}
	return Scored(*v)
}

// ParseSEE reads a textual SEE mark: blank is unset, "A" (any case) is absent,
// an integer is a score, even out of range. Anything else is unset.
// The numeric sentinel is not recognised in text: "-1" is an invalid score.
func ParseSEE(s string) SEEMark {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, AbsentToken) {
		return Absent()
	}
	if n := ParseScore(s); n != nil {
		return Scored(*n)
	}
	return Unset()
}

// ParseScore reads a textual component mark. Blank or non-numeric input is unset.
func ParseScore(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func (m SEEMark) MarshalJSON() ([]byte, error) {
	switch m.state {
	case SEEScored:
		return []byte(strconv.Itoa(m.score)), nil
	case SEEAbsent:
		return []byte(strconv.Quote(AbsentToken)), nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts null, an integer, the absent token or the legacy -1 sentinel.
// Only a bare number may carry the sentinel: "-1" decodes to an invalid score.
func (m *SEEMark) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Unset()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decoding SEE mark")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*m = Unset()
			return nil
		}
		if strings.EqualFold(s, AbsentToken) {
			*m = Absent()
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.Errorf("invalid SEE mark %q", s)
		}
		*m = Scored(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "decoding SEE mark")
	}
	*m = SEEFromInt(&n)
	return nil
}

// SubjectMarks are the raw marks of one student for one subject.
// A nil component has not been entered yet.
type SubjectMarks struct {
	MSE1  *int    `json:"mse1"`
	MSE2  *int    `json:"mse2"`
	Task1 *int    `json:"task1"`
	Task2 *int    `json:"task2"`
	Task3 *int    `json:"task3"`
	SEE   SEEMark `json:"see"`
}

// CIE sums the internal components, unset components count as 0.
func (m SubjectMarks) CIE() int {
	var cie int
	for _, c := range []*int{m.MSE1, m.MSE2, m.Task1, m.Task2, m.Task3} {
		if c != nil {
			cie += *c
		}
	}
	return cie
}

// Problems lists the components outside of their allowed range, keyed by JSON field name.
func (m SubjectMarks) Problems() map[string]string {
	problems := make(map[string]string)
	check := func(field string, v *int, max int) {
		if v != nil && (*v < 0 || *v > max) {
			problems[field] = field + " must be between 0 and " + strconv.Itoa(max)
		}
	}
	check("mse1", m.MSE1, MaxMSE)
	check("mse2", m.MSE2, MaxMSE)
	check("task1", m.Task1, MaxTask1)
	check("task2", m.Task2, MaxTask2)
	check("task3", m.Task3, MaxTask3)
	if !m.SEE.Valid() {
		problems["see"] = "see must be between 0 and " + strconv.Itoa(MaxSEE) + " or " + AbsentToken
	}
	return problems
}
