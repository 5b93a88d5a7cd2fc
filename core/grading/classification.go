package grading

// ClassificationPending is reported while any SEE mark of an exam is missing.
const ClassificationPending = "Awaiting SEE Results"

// ClassificationBand is one row of the classification table.
type ClassificationBand struct {
	Min   float64 `json:"min"`
	Label string  `json:"label"`
}

var classificationTable = []ClassificationBand{
	{Min: 7, Label: "First Class with Distinction"},
	{Min: 6, Label: "First Class"},
	{Min: 5, Label: "Second Class"},
	{Min: 0, Label: "Academic Probation / Non-compliance"},
}

// ClassificationTable returns a copy of the classification bands, highest first.
func ClassificationTable() []ClassificationBand {
	bands := make([]ClassificationBand, len(classificationTable))
	copy(bands, classificationTable)
	return bands
}

// Classify returns the classification label of an SGPA.
func Classify(sgpa float64) string {
	for _, band := range classificationTable {
		if sgpa >= band.Min {
			return band.Label
		}
	}
	return classificationTable[len(classificationTable)-1].Label
}
