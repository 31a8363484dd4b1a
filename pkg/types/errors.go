package types

import (
	"errors"
	"fmt"
)

var (
	ErrNeedNotFound       = errors.New("need not found")
	ErrBasketItemNotFound = errors.New("basket item not found")
	ErrUserNotFound       = errors.New("user not found")

	ErrEmptyBasket          = errors.New("basket is empty")
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	ErrUsernameReserved   = errors.New("username is reserved")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InsufficientQuantityError reports which need a basket overdrew.
// errors.Is(err, ErrInsufficientQuantity) matches it.
type InsufficientQuantityError struct {
	NeedName string
}

func (e *InsufficientQuantityError) Error() string {
	if e.NeedName == "" {
		return ErrInsufficientQuantity.Error()
	}
	return fmt.Sprintf("insufficient quantity for %s", e.NeedName)
}

func (e *InsufficientQuantityError) Is(target error) bool {
	return target == ErrInsufficientQuantity
}
