package sale

import (
	"errors"
	"fmt"
)

var (
	ErrCannotBeZero        = errors.New("CannotBeZero")
	ErrSaleNotActive       = errors.New("SaleNotActive")
	ErrSaleExhausted       = errors.New("SaleExhausted")
	ErrNotWhitelisted      = errors.New("NotWhitelisted")
	ErrRoundNotClosed      = errors.New("RoundNotClosed")
	ErrClaimWindowNotOpen  = errors.New("ClaimWindowNotOpen")
	ErrNothingToClaim      = errors.New("NothingToClaim")
	ErrAlreadyUnlocked     = errors.New("AlreadyFullyUnlocked")
	ErrInsufficientPayment = errors.New("InsufficientPayment")
	ErrTransferFailed      = errors.New("TransferFailed")
)

func ErrInvalidUserAddress(address string) error {
	return fmt.Errorf("InvalidUserAddress: %s", address)
}

func ErrInvalidContractAddress(address string) error {
	return fmt.Errorf("InvalidContractAddress: %s", address)
}

func ErrRoundOutOfRange(roundIndex int) error {
	return fmt.Errorf("RoundOutOfRange: %d", roundIndex)
}

func ErrInvalidAmount(entity, value string) error {
	return fmt.Errorf("InvalidAmount for %s with value %s", entity, value)
}

type CustomError struct {
	Code    int
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewCustomError(code int, message string, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
