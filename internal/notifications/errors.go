package notifications

import "errors"

var (
	ErrNotFound  = errors.New("notification not found")
	ErrDuplicate = errors.New("notification already exists")
)
