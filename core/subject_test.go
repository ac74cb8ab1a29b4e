package core

import "testing"

func TestParseSubject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Subject
		wantErr bool
	}{
		{name: "canonical", in: "Mathematics", want: SubjectMathematics},
		{name: "lower", in: "physics", want: SubjectPhysics},
		{name: "upper", in: "CHEMISTRY", want: SubjectChemistry},
		{name: "maths alias", in: "maths", want: SubjectMathematics},
		{name: "math alias", in: "Math", want: SubjectMathematics},
		{name: "padded", in: "  chemistry ", want: SubjectChemistry},
		{name: "unknown", in: "Alchemy", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubject(tt.in)
			if tt.wantErr {
				if err != ErrUnknownSubject {
					t.Errorf("ParseSubject(%q) err = %v; want ErrUnknownSubject", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSubject(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSubject(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubjectsContain(t *testing.T) {
	if !SubjectsContain(DefaultSubjects, SubjectPhysics) {
		t.Error("DefaultSubjects should contain Physics")
	}
	if SubjectsContain(nil, SubjectPhysics) {
		t.Error("empty set should not contain Physics")
	}
}
