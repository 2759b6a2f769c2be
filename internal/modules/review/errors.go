package review

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid review")
	ErrNotFound         = errors.New("booking not found")
	ErrConflict         = errors.New("booking already reviewed")
	ErrReviewNotAllowed = errors.New("only confirmed lessons can be reviewed")
)
