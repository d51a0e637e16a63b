package allocation

import (
	"errors"
	"fmt"
)

var (
	ErrCannotBeZero          = errors.New("CannotBeZero")
	ErrNoParticipants        = errors.New("NoParticipants")
	ErrTGEAlreadyPassed      = errors.New("TGEAlreadyPassed")
	ErrTGENotPassed          = errors.New("TGENotPassed")
	ErrMainnetAlreadyLive    = errors.New("MainnetAlreadyLaunched")
	ErrCliffNotPassed        = errors.New("CliffNotPassed")
	ErrUnlockWindowNotOpen   = errors.New("UnlockWindowNotOpen")
	ErrScheduleExhausted     = errors.New("ScheduleExhausted")
	ErrNothingToClaim        = errors.New("NothingToClaim")
	ErrParticipantsFrozen    = errors.New("ParticipantsFrozen")
	ErrTransferFailed        = errors.New("TransferFailed")
	ErrTokenSaleUnregistered = errors.New("TokenSaleUnregistered")
)

func ErrInvalidUserAddress(address string) error {
	return fmt.Errorf("InvalidUserAddress: %s", address)
}

func ErrInvalidContractAddress(address string) error {
	return fmt.Errorf("InvalidContractAddress: %s", address)
}

func ErrInvalidGroup(group string) error {
	return fmt.Errorf("InvalidGroup: %s", group)
}

func ErrInvalidAmount(entity, value string) error {
	return fmt.Errorf("InvalidAmount for %s with value %s", entity, value)
}

func ErrArraysLengthMismatch(length1, length2 int) error {
	return fmt.Errorf("ArraysLengthMismatch: %d != %d", length1, length2)
}

func ErrParticipantNotFound(group, address string) error {
	return fmt.Errorf("ParticipantNotFound in group %s: %s", group, address)
}

func ErrZeroAllocation(address string) error {
	return fmt.Errorf("ZeroAllocation for participant: %s", address)
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
