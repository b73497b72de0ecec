package service

import (
	"errors"
	"fmt"
)

// ErrValidation is the class of caller errors: the request is rejected
// immediately and nothing is written. Specific validation errors wrap it so
// callers can match the class with errors.Is.
var ErrValidation = errors.New("validation failed")

var (
	ErrGroupNameRequired = fmt.Errorf("%w: group name required", ErrValidation)
	ErrCodeRequired      = fmt.Errorf("%w: invite code required", ErrValidation)
	ErrNoTask            = fmt.Errorf("%w: no task selected or created", ErrValidation)
	ErrInvalidDuration   = fmt.Errorf("%w: logged time must be positive", ErrValidation)
)
