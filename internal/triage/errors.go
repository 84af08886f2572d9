package triage

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidTransition  = errors.New("operation not allowed in current state")
	ErrAnalysisInProgress = errors.New("an assessment is already in progress for this session")
	ErrInvalidPhone       = errors.New("phone number must contain at least the minimum number of digits")
	ErrMissingLanguage    = errors.New("language is required")
	ErrMissingSymptoms    = errors.New("current symptoms are required")
	ErrProfileNotFound    = errors.New("no previous profile found for this patient")
	ErrIncompleteAnswers  = errors.New("every question requires at least one selected option")
	ErrUnknownOption      = errors.New("answer references an unknown question or option")
	ErrNotTerminal        = errors.New("session has no terminal report to save")
)
