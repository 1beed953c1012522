package model

import "errors"

var (
	ErrDuplicateURL = errors.New("this page is already bookmarked")
	ErrNotFound     = errors.New("not found")
	ErrEmptyField   = errors.New("required field is empty")
)
