package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mathExam = &Exam{ID: "sem1", Name: "Semester 1", Subjects: []Subject{{Name: "Math", Credits: 4}}}

func mathMarks(see SEEMark) map[string]SubjectMarks {
	return map[string]SubjectMarks{
		"Math": {MSE1: intPtr(18), MSE2: intPtr(16), Task1: intPtr(4), Task2: intPtr(3), Task3: intPtr(2), SEE: see},
	}
}

func TestComputeSemester_scenarios(t *testing.T) {
	t.Run("final", func(t *testing.T) {
		res := ComputeSemester(mathExam, mathMarks(Scored(70)))
		require.NotNil(t, res)
		require.True(t, res.Final())
		require.Len(t, res.SubjectDetails, 1)

		math := res.SubjectDetails[0]
		assert.Equal(t, 43, math.CIE)
		assert.Equal(t, 78.0, *math.FinalPercentage)
		assert.Equal(t, "A", math.Letter)
		assert.Equal(t, 8, *math.GradePoint)
		assert.Equal(t, 8.0, *res.SGPA)
		assert.Equal(t, "First Class with Distinction", res.Classification)
		assert.Equal(t, "sem1", res.ExamID)
	})

	t.Run("pending", func(t *testing.T) {
		res := ComputeSemester(mathExam, mathMarks(Unset()))
		require.NotNil(t, res)
		assert.Nil(t, res.SGPA)
		assert.Equal(t, ClassificationPending, res.Classification)

		math := res.SubjectDetails[0]
		assert.Equal(t, 43, math.CIE)
		assert.Nil(t, math.FinalPercentage)
		assert.Nil(t, math.GradePoint)
		assert.Equal(t, "N/A", math.Letter)
	})

	t.Run("absent", func(t *testing.T) {
		res := ComputeSemester(mathExam, mathMarks(Absent()))
		require.NotNil(t, res)
		require.NotNil(t, res.SGPA)

		math := res.SubjectDetails[0]
		assert.Equal(t, 0.0, *math.FinalPercentage)
		assert.Equal(t, "AB", math.Letter)
		assert.Equal(t, 0, *math.GradePoint)
		assert.Equal(t, 0.0, *res.SGPA)
		assert.Equal(t, "Academic Probation / Non-compliance", res.Classification)
	})
}

func TestComputeSemester_allOrNothing(t *testing.T) {
	exam := &Exam{ID: "e", Subjects: []Subject{{"Math", 4}, {"Physics", 3}, {"Chemistry", 3}}}
	full := SubjectMarks{MSE1: intPtr(20), MSE2: intPtr(20), Task1: intPtr(4), Task2: intPtr(4), Task3: intPtr(2), SEE: Scored(100)}

	tests := []struct {
		name  string
		marks map[string]SubjectMarks
	}{
		{name: "one SEE unset", marks: map[string]SubjectMarks{"Math": full, "Physics": full, "Chemistry": {MSE1: intPtr(20)}}},
		{name: "one subject missing", marks: map[string]SubjectMarks{"Math": full, "Physics": full}},
		{name: "no marks at all", marks: map[string]SubjectMarks{}},
		{name: "marks under other names", marks: map[string]SubjectMarks{"math": full, "Physics": full, "Chemistry": full}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputeSemester(exam, tt.marks)
			require.NotNil(t, res)
			assert.Nil(t, res.SGPA)
			assert.Equal(t, ClassificationPending, res.Classification)
			for _, d := range res.SubjectDetails {
				assert.Nil(t, d.FinalPercentage)
				assert.Nil(t, d.GradePoint)
				assert.Equal(t, LetterPending, d.Letter)
			}
		})
	}
}

func TestComputeSemester_subjectOrderAndSGPA(t *testing.T) {
	exam := &Exam{ID: "e", Subjects: []Subject{{"Physics", 3}, {"Math", 4}, {"Art", 1}}}
	marks := map[string]SubjectMarks{
		"Math":    {MSE1: intPtr(18), MSE2: intPtr(16), Task1: intPtr(4), Task2: intPtr(3), Task3: intPtr(2), SEE: Scored(70)}, // 78 -> A/8
		"Art":     {MSE1: intPtr(10), SEE: Scored(41)},                                                                          // 30.5 -> F/0
		"Physics": {MSE1: intPtr(20), MSE2: intPtr(20), Task1: intPtr(4), Task2: intPtr(4), Task3: intPtr(2), SEE: Scored(81)}, // 90.5 -> O/10
		"Unused":  {SEE: Scored(100)},
	}

	res := ComputeSemester(exam, marks)
	require.True(t, res.Final())

	names := make([]string, 0, len(res.SubjectDetails))
	for _, d := range res.SubjectDetails {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Physics", "Math", "Art"}, names)
	assert.Equal(t, 90.5, *res.SubjectDetails[0].FinalPercentage)
	assert.Equal(t, 30.5, *res.SubjectDetails[2].FinalPercentage)
	assert.Equal(t, "F", res.SubjectDetails[2].Letter)

	// (3*10 + 4*8 + 1*0) / 8
	assert.InDelta(t, 62.0/8, *res.SGPA, 1e-9)
	assert.Equal(t, "First Class with Distinction", res.Classification)
}

func TestComputeSemester_nilInputs(t *testing.T) {
	assert.Nil(t, ComputeSemester(nil, mathMarks(Scored(70))))
	assert.Nil(t, ComputeSemester(mathExam, nil))
}

func TestComputeSemester_zeroCredits(t *testing.T) {
	exam := &Exam{ID: "e", Subjects: []Subject{{"Math", 0}}}
	res := ComputeSemester(exam, mathMarks(Scored(70)))
	require.NotNil(t, res.SGPA)
	assert.Equal(t, 0.0, *res.SGPA)

	empty := ComputeSemester(&Exam{ID: "empty"}, map[string]SubjectMarks{})
	require.NotNil(t, empty.SGPA)
	assert.Equal(t, 0.0, *empty.SGPA)
}

func TestComputeSemester_idempotent(t *testing.T) {
	for _, see := range []SEEMark{Unset(), Absent(), Scored(70)} {
		marks := mathMarks(see)
		first := ComputeSemester(mathExam, marks)
		second := ComputeSemester(mathExam, marks)
		assert.Equal(t, first, second)
		assert.Equal(t, mathMarks(see), marks, "marks must not be mutated")
	}
}

func TestComputeSubject(t *testing.T) {
	math := Subject{Name: "Math", Credits: 4}

	t.Run("nil marks pending", func(t *testing.T) {
		res := ComputeSubject(math, nil, false)
		assert.Equal(t, 0, res.CIE)
		assert.Equal(t, Unset(), res.SEE)
		assert.Equal(t, LetterPending, res.Letter)
	})

	t.Run("pending keeps raw SEE", func(t *testing.T) {
		m := SubjectMarks{MSE1: intPtr(10), SEE: Scored(60)}
		res := ComputeSubject(math, &m, false)
		assert.Equal(t, 10, res.CIE)
		assert.Equal(t, Scored(60), res.SEE)
		assert.Nil(t, res.FinalPercentage)
	})

	t.Run("absent zeroes a full CIE", func(t *testing.T) {
		m := SubjectMarks{MSE1: intPtr(20), MSE2: intPtr(20), Task1: intPtr(4), Task2: intPtr(4), Task3: intPtr(2), SEE: Absent()}
		res := ComputeSubject(math, &m, true)
		assert.Equal(t, 50, res.CIE)
		assert.Equal(t, 0.0, *res.FinalPercentage)
		assert.Equal(t, 0, *res.GradePoint)
		assert.Equal(t, LetterAbsent, res.Letter)
	})

	t.Run("odd SEE", func(t *testing.T) {
		m := SubjectMarks{MSE1: intPtr(15), SEE: Scored(51)}
		res := ComputeSubject(math, &m, true)
		assert.Equal(t, 40.5, *res.FinalPercentage)
		assert.Equal(t, "P", res.Letter)
	})
}
