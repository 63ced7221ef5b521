package domain

import (
	"time"

	"github.com/google/uuid"
)

type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "success"
}

// IsError reports whether the severity renders as an error toast.
func (s Severity) IsError() bool {
	return s == SeverityError
}

func SeverityOf(isError bool) Severity {
	if isError {
		return SeverityError
	}
	return SeveritySuccess
}

type Toast struct {
	ID       uuid.UUID
	Message  string
	Severity Severity

	CreatedAt time.Time
}
