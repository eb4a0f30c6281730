// Package holders manages the two kinds of people who can hold equipment,
// students and faculty, and resolves a (holder_type, holder_id) pair to one of them.
package holders

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeStudent Type = "Student"
	TypeFaculty Type = "Faculty"
)

// ParseType accepts the variant name in any case ("student", "FACULTY", ...).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return TypeStudent, nil
	case "faculty":
		return TypeFaculty, nil
	}
	return "", fmt.Errorf("holder_type must be Student or Faculty, got %q", s)
}

func (t Type) Valid() bool { return t == TypeStudent || t == TypeFaculty }

// Ref points at one holder. The pair is what a usage row stores.
type Ref struct {
	Type Type   `json:"holder_type"`
	ID   uint64 `json:"holder_id"`
}

func (r Ref) String() string { return fmt.Sprintf("%s#%d", r.Type, r.ID) }

type Student struct {
	StudentID  uint64    `db:"student_id" json:"student_id"`
	Name       string    `db:"name" json:"name"`
	Department *string   `db:"department" json:"department,omitempty"`
	Year       *int      `db:"year" json:"year,omitempty"`
	Contact    *string   `db:"contact" json:"contact,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Faculty struct {
	FacultyID   uint64    `db:"faculty_id" json:"faculty_id"`
	Name        string    `db:"name" json:"name"`
	Department  *string   `db:"department" json:"department,omitempty"`
	Designation *string   `db:"designation" json:"designation,omitempty"`
	Contact     *string   `db:"contact" json:"contact,omitempty"`
	Email       *string   `db:"email" json:"email,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Holder is the variant-independent view attached to usage records.
type Holder struct {
	Type       Type    `json:"holder_type"`
	ID         uint64  `json:"holder_id"`
	Name       string  `json:"name"`
	Department *string `json:"department,omitempty"`
	Contact    *string `json:"contact,omitempty"`
	Email      *string `json:"email,omitempty"`
	// Student only
	Year *int `json:"year,omitempty"`
	// Faculty only
	Designation *string `json:"designation,omitempty"`
}

func (s Student) Holder() Holder {
	return Holder{
		Type:       TypeStudent,
		ID:         s.StudentID,
		Name:       s.Name,
		Department: s.Department,
		Contact:    s.Contact,
		Email:      s.Email,
		Year:       s.Year,
	}
}

func (f Faculty) Holder() Holder {
	return Holder{
		Type:        TypeFaculty,
		ID:          f.FacultyID,
		Name:        f.Name,
		Department:  f.Department,
		Contact:     f.Contact,
		Email:       f.Email,
		Designation: f.Designation,
	}
}
