package core

import (
	"errors"
	"strings"
)

// Subject is a named course area a teacher may teach and a student may be
// enrolled in. Values are canonical display names; parsing is
// case-insensitive and alias-aware ("maths" -> Mathematics) instead of the
// legacy capitalize-first-letter guessing.
type Subject string

const (
	SubjectMathematics Subject = "Mathematics"
	SubjectPhysics     Subject = "Physics"
	SubjectChemistry   Subject = "Chemistry"
)

var (
	AllSubjects = []Subject{SubjectMathematics, SubjectPhysics, SubjectChemistry}

	// DefaultSubjects is assigned to newly approved students and newly
	// registered teachers.
	DefaultSubjects = []Subject{SubjectMathematics, SubjectPhysics, SubjectChemistry}

	subjectAliases = map[string]Subject{
		"math":  SubjectMathematics,
		"maths": SubjectMathematics,
	}

	ErrUnknownSubject = errors.New("unknown subject")
)

func (s Subject) String() string { return string(s) }

// ParseSubject resolves a client-supplied subject name to its canonical
// Subject, or ErrUnknownSubject.
func ParseSubject(name string) (Subject, error) {
	key := CleanString(name, true /* lower */)
	if sub, ok := subjectAliases[key]; ok {
		return sub, nil
	}
	for _, sub := range AllSubjects {
		if key == strings.ToLower(string(sub)) {
			return sub, nil
		}
	}
	return "", ErrUnknownSubject
}

// SubjectsContain reports whether subjects includes s.
func SubjectsContain(subjects []Subject, s Subject) bool {
	for _, sub := range subjects {
		if sub == s {
			return true
		}
	}
	return false
}

// SubjectStrings converts subjects for storage drivers that want []string.
func SubjectStrings(subjects []Subject) []string {
	strs := make([]string, 0, len(subjects))
	for _, s := range subjects {
		strs = append(strs, string(s))
	}
	return strs
}

// SubjectsFromStrings is the inverse of SubjectStrings. Unknown values are
// dropped; the store only ever holds canonical names.
func SubjectsFromStrings(strs []string) []Subject {
	subjects := make([]Subject, 0, len(strs))
	for _, s := range strs {
		if sub, err := ParseSubject(s); err == nil {
			subjects = append(subjects, sub)
		}
	}
	return subjects
}
