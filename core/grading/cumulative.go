package grading

// ComputeCumulative returns the credit-weighted mean grade point over every subject of results.
// Failed and absent subjects are left out of both sums. Subjects without a grade point are skipped.
// It returns 0 when no credits are counted.
func ComputeCumulative(results []*SemesterResult) float64 {
	var points, credits int
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, d := range res.SubjectDetails {
			if d.Letter == LetterFail || d.Letter == LetterAbsent || d.GradePoint == nil {
				continue
			}
			points += d.Credits * *d.GradePoint
			credits += d.Credits
		}
	}
	if credits == 0 {
		return 0
	}
	return float64(points) / float64(credits)
}

// CompletedPrefix keeps the final results, in the given (authored exam) order,
// up to and including the one of examID.
// It returns false when examID has no final result in results.
func CompletedPrefix(results []*SemesterResult, examID string) ([]*SemesterResult, bool) {
	completed := make([]*SemesterResult, 0, len(results))
	for _, res := range results {
		if !res.Final() {
			continue
		}
		completed = append(completed, res)
		if res.ExamID == examID {
			return completed, true
		}
	}
	return nil, false
}

// CGPA is the cumulative grade point shown for examID: the mean over the completed prefix.
// It returns nil when examID is not completed.
func CGPA(results []*SemesterResult, examID string) *float64 {
	prefix, ok := CompletedPrefix(results, examID)
	if !ok {
		return nil
	}
	cgpa := ComputeCumulative(prefix)
	return &cgpa
}
