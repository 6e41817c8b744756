// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import "errors"

var (
	ErrUserNotInitialized    = errors.New("user not initialized")
	ErrAlreadyRegistered     = errors.New("user already registered")
	ErrQuestionTooLong       = errors.New("question exceeds 256 bytes")
	ErrEmptyQuestion         = errors.New("question cannot be empty")
	ErrNotEnoughOptions      = errors.New("poll needs at least 2 options")
	ErrTooMuchOptions        = errors.New("poll allows at most 5 options")
	ErrEmptyOption           = errors.New("option cannot be empty")
	ErrOptionTooLong         = errors.New("option exceeds 256 bytes")
	ErrInvalidDuration       = errors.New("duration cannot be negative")
	ErrInvalidOption         = errors.New("invalid option index")
	ErrPollClosed            = errors.New("poll is closed")
	ErrAlreadyVoted          = errors.New("already voted on this poll")
	ErrVoterCapacityExceeded = errors.New("poll has reached its voter capacity")
	ErrPollNotFound          = errors.New("poll not found")
	ErrCorruptRecord         = errors.New("corrupt record")
	ErrWrongRecordKind       = errors.New("record is not of the expected kind")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrUserNotInitialized, "UserNotInitialized"},
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrQuestionTooLong, "QuestionTooLong"},
	{ErrEmptyQuestion, "EmptyQuestion"},
	{ErrNotEnoughOptions, "NotEnoughOptions"},
	{ErrTooMuchOptions, "TooMuchOptions"},
	{ErrEmptyOption, "EmptyOption"},
	{ErrOptionTooLong, "OptionTooLong"},
	{ErrInvalidDuration, "InvalidDuration"},
	{ErrInvalidOption, "InvalidOption"},
	{ErrPollClosed, "PollClosed"},
	{ErrAlreadyVoted, "AlreadyVoted"},
	{ErrVoterCapacityExceeded, "VoterCapacityExceeded"},
	{ErrPollNotFound, "PollNotFound"},
	{ErrCorruptRecord, "CorruptRecord"},
	{ErrWrongRecordKind, "WrongRecordKind"},
}

// Code returns the stable name callers branch on, or "" for errors that
// are not part of the program's taxonomy.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// IsValidation reports whether err is a precondition failure on caller
// input, as opposed to a state conflict or a storage problem.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrQuestionTooLong),
		errors.Is(err, ErrEmptyQuestion),
		errors.Is(err, ErrNotEnoughOptions),
		errors.Is(err, ErrTooMuchOptions),
		errors.Is(err, ErrEmptyOption),
		errors.Is(err, ErrOptionTooLong),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidOption):
		return true
	}
	return false
}
