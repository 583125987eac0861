package school_test

import (
	"testing"

	"meraki/internal/domain/school"
	"meraki/internal/domain/validation"
)

func validSchool() school.School {
	return school.School{
		Name:    "Lincoln High",
		Address: "1 Main St Suite 2",
		City:    "Springfield",
		State:   "IL",
		Pincode: "620001",
		Phone:   "9876543210",
	}
}

// TestSchool_Validate tests validation of School.
func TestSchool_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(s *school.School)
		wantField string
	}{
		{name: "valid school", mutate: func(s *school.School) {}},
		{name: "short name", mutate: func(s *school.School) { s.Name = "LH" }, wantField: "name"},
		{name: "short address", mutate: func(s *school.School) { s.Address = "1 Main St" }, wantField: "address"},
		{name: "blank city", mutate: func(s *school.School) { s.City = "  " }, wantField: "city"},
		{name: "one letter state", mutate: func(s *school.School) { s.State = "I" }, wantField: "state"},
		{name: "five digit pincode", mutate: func(s *school.School) { s.Pincode = "62000" }, wantField: "pincode"},
		{name: "seven digit pincode", mutate: func(s *school.School) { s.Pincode = "6200011" }, wantField: "pincode"},
		{name: "short phone", mutate: func(s *school.School) { s.Phone = "98765" }, wantField: "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchool()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			ve, ok := validation.As(err)
			if !ok {
				t.Fatalf("Validate() error = %v, want validation error", err)
			}
			if _, ok := ve.Fields[tt.wantField]; !ok {
				t.Errorf("Validate() fields = %v, want %q", ve.Fields, tt.wantField)
			}
		})
	}
}

// TestSchool_Normalize tests whitespace trimming.
func TestSchool_Normalize(t *testing.T) {
	s := school.School{ID: "s1", Name: "  Lincoln High ", Pincode: " 620001"}
	got := s.Normalize()
	if got.Name != "Lincoln High" || got.Pincode != "620001" || got.ID != "s1" {
		t.Errorf("Normalize() = %+v", got)
	}
}
