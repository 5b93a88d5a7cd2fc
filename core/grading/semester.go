package grading

// Exam is the engine's view of a semester definition: subjects in authored order.
type Exam struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Subjects []Subject `json:"subjects"`
}

// SemesterResult is the computed outcome of one exam for one student.
// SGPA is nil while the exam is pending.
type SemesterResult struct {
	ExamID         string          `json:"exam_id"`
	SGPA           *float64        `json:"sgpa"`
	Classification string          `json:"classification"`
	SubjectDetails []SubjectResult `json:"subject_details"`
}

// Final reports whether every SEE mark of the exam was entered.
func (r *SemesterResult) Final() bool {
	return r != nil && r.SGPA != nil
}

// ComputeSemester grades every subject of exam with the student's marks (keyed by subject name).
// It returns nil when exam or marks is nil.
//
// SGPA is all-or-nothing: a single missing SEE mark leaves the whole exam pending.
func ComputeSemester(exam *Exam, marks map[string]SubjectMarks) *SemesterResult {
	if exam == nil || marks == nil {
		return nil
	}

	allSEEEntered := true
	for _, sub := range exam.Subjects {
		if m, ok := marks[sub.Name]; !ok || !m.SEE.IsSet() {
			allSEEEntered = false
			break
		}
	}

	details := make([]SubjectResult, 0, len(exam.Subjects))
	for _, sub := range exam.Subjects {
		var subMarks *SubjectMarks
		if m, ok := marks[sub.Name]; ok {
			subMarks = &m
		}
		details = append(details, ComputeSubject(sub, subMarks, allSEEEntered))
	}

	res := &SemesterResult{
		ExamID:         exam.ID,
		Classification: ClassificationPending,
		SubjectDetails: details,
	}
	if !allSEEEntered {
		return res
	}

	var points, credits int
	for _, d := range details {
		points += d.Credits * *d.GradePoint
		credits += d.Credits
	}
	var sgpa float64
	if credits > 0 {
		sgpa = float64(points) / float64(credits)
	}
	res.SGPA = &sgpa
	res.Classification = Classify(sgpa)
	return res
}
