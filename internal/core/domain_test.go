package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCategoriesFixedSet(t *testing.T) {
	want := []string{"food", "health", "housing", "sports", "education"}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i, c := range want {
		if got[i] != c {
			t.Errorf("category[%d] = %q, want %q", i, got[i], c)
		}
	}

	// Mutating the returned slice must not leak into the template.
	got[0] = "tampered"
	if Categories()[0] != "food" {
		t.Error("Categories() must return a copy")
	}
}

func TestIsKnownCategory(t *testing.T) {
	for _, c := range Categories() {
		if !IsKnownCategory(c) {
			t.Errorf("IsKnownCategory(%q) = false", c)
		}
	}
	for _, c := range []string{"", "pets", "Food", "FOOD"} {
		if IsKnownCategory(c) {
			t.Errorf("IsKnownCategory(%q) = true", c)
		}
	}
}

func TestCostEntryValidate(t *testing.T) {
	valid := CostEntry{
		UserID:      1,
		Sum:         decimal.NewFromInt(100),
		Category:    CategoryFood,
		Description: "pizza",
		Date:        NewDate(2025, 2, 10),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*CostEntry)
		wantErr error
	}{
		{"zero userid", func(e *CostEntry) { e.UserID = 0 }, ErrInvalidUserID},
		{"negative userid", func(e *CostEntry) { e.UserID = -3 }, ErrInvalidUserID},
		{"zero sum", func(e *CostEntry) { e.Sum = decimal.Zero }, ErrInvalidSum},
		{"negative sum", func(e *CostEntry) { e.Sum = decimal.NewFromInt(-1) }, ErrInvalidSum},
		{"empty category", func(e *CostEntry) { e.Category = "  " }, ErrInvalidCategory},
		{"empty description", func(e *CostEntry) { e.Description = "" }, ErrEmptyDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCostEntryValidateUnknownCategoryAccepted(t *testing.T) {
	// Out-of-set categories are stored as-is; they just never reach a report
	// bucket. Creation must not reject them.
	e := CostEntry{
		UserID:      1,
		Sum:         decimal.NewFromInt(10),
		Category:    "pets",
		Description: "dog food",
		Date:        NewDate(2025, 2, 1),
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("unknown category rejected: %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	valid := User{
		ID:            1,
		FirstName:     "John",
		LastName:      "Doe",
		Birthday:      NewDate(1990, 1, 1),
		MaritalStatus: "single",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*User)
	}{
		{"zero id", func(u *User) { u.ID = 0 }},
		{"empty first name", func(u *User) { u.FirstName = " " }},
		{"empty last name", func(u *User) { u.LastName = "" }},
		{"zero birthday", func(u *User) { u.Birthday = Date{} }},
		{"empty marital status", func(u *User) { u.MaritalStatus = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.mutate(&u)
			if err := u.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
