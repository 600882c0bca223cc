package core

import (
	"errors"
)

var (
	ErrIDExhausted = errors.New("identifier counter exhausted")
)
