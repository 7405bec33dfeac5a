package repository

import "errors"

var (
	// ErrAlreadyGraded the row already carries a result; the write was skipped
	ErrAlreadyGraded = errors.New("already graded")
	// ErrBetNotFound no bet with the given key
	ErrBetNotFound = errors.New("bet not found")
	// ErrBookmarkNotFound no bookmark for the given user/bet
	ErrBookmarkNotFound = errors.New("bookmark not found")
)
