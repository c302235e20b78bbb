package models

import "time"

// Student belongs to exactly one school; ClassID is optional.
type Student struct {
	ID        string
	SchoolID  string
	FullName  string
	ClassID   *string
	ClassName string // Joined for display, empty when unassigned
	CreatedAt time.Time
}

// Class is a named group of students within a school.
type Class struct {
	ID            string
	SchoolID      string
	Name          string
	StudentsCount int // Joined for display
	CreatedAt     time.Time
}

// AcademicTerm bounds a school year or semester.
type AcademicTerm struct {
	ID        string
	SchoolID  string
	Name      string
	StartDate time.Time
	EndDate   time.Time
}
