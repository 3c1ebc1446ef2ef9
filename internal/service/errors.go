package service

import "errors"

var (
	// ErrThreadNotFound covers a missing thread, an inactive thread on a
	// write, and a caller who is not a party. The three are deliberately
	// indistinguishable so thread existence never leaks to outsiders.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrFirstMessageNotAllowed means the thread has no messages yet and the
	// sender's role is not the one allowed to open the conversation.
	ErrFirstMessageNotAllowed = errors.New("first message not allowed")

	// ErrEmptyMessage means the body was empty after trimming whitespace.
	ErrEmptyMessage = errors.New("empty message")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)
