package grading

// Subject is one graded subject of an exam. Its name identifies it inside a marks map.
type Subject struct {
	Name    string `json:"name"`
	Credits int    `json:"credits"`
}

// SubjectResult is the computed outcome of one subject.
// FinalPercentage and GradePoint stay nil until every SEE mark of the exam is entered.
type SubjectResult struct {
	Name            string       `json:"name"`
	Credits         int          `json:"credits"`
	Marks           SubjectMarks `json:"marks"`
	CIE             int          `json:"cie"`
	SEE             SEEMark      `json:"see"`
	FinalPercentage *float64     `json:"final_percentage"`
	GradePoint      *int         `json:"grade_point"`
	Letter          string       `json:"letter"`
}

// ComputeSubject grades one subject.
// allSEEEntered is decided by the caller across the whole exam: while it is false the
// subject is pending even if its own SEE mark is set.
func ComputeSubject(subject Subject, marks *SubjectMarks, allSEEEntered bool) SubjectResult {
	var m SubjectMarks
	if marks != nil {
		m = *marks
	}

	res := SubjectResult{
		Name:    subject.Name,
		Credits: subject.Credits,
		Marks:   m,
		CIE:     m.CIE(),
		SEE:     m.SEE,
		Letter:  LetterPending,
	}
	if !allSEEEntered {
		return res
	}

	var pct float64
	if !m.SEE.IsAbsent() {
		see, _ := m.SEE.Score()
		pct = float64(res.CIE) + float64(see)/2
	}
	grade := ResolveGrade(pct, m.SEE.IsAbsent())

	res.FinalPercentage = &pct
	res.GradePoint = &grade.GradePoint
	res.Letter = grade.Letter
	return res
}
