package models

// RawResponse is the decoded JSON body of a homework_statuses answer.
// It is left untyped so shape problems can be told apart from bad values.
type RawResponse = any

// Homework is a single submission record returned by the API.
type Homework struct {
	ID              int64
	Name            string
	Status          Status
	ReviewerComment string
	LessonName      string
	DateUpdated     string
}
