package allocation

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"
)

func GetUserId(ctx TransactionContextInterface) (string, error) {
	b64ID, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return "", fmt.Errorf("failed to read clientID: %v", err)
	}

	decodeID, err := base64.StdEncoding.DecodeString(b64ID)
	if err != nil {
		return "", fmt.Errorf("failed to base64 decode clientID: %v", err)
	}

	completeId := string(decodeID)
	userId := completeId[(strings.Index(completeId, "x509::CN=") + 9):strings.Index(completeId, ",")]

	if !IsUserAddressValid(userId) {
		return "", ErrInvalidUserAddress(userId)
	}

	return userId, nil
}

func IsUserAddressValid(address string) bool {
	if address == "" {
		return false
	}

	isValid, _ := regexp.MatchString(userAddressRegex, address)
	return isValid
}

func IsContractAddressValid(address string) bool {
	if address == "" {
		return false
	}

	isValid, _ := regexp.MatchString(contractAddressRegex, address)
	return isValid
}

func IsSignerAllocationAdmin(ctx TransactionContextInterface) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to get client id", err)
	}

	if signer != allocationAdmin {
		return NewCustomError(http.StatusUnauthorized, "signer is not the allocation admin", nil)
	}

	return nil
}

// GetTransactionTimestamp returns the host-ordered transaction time in unix
// seconds.
func GetTransactionTimestamp(ctx TransactionContextInterface) (uint64, error) {
	timestamp, err := ctx.GetTxTimestamp()
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to get transaction timestamp", err)
	}

	return uint64(timestamp.GetSeconds()), nil
}

func groupFromName(name string) (AllocationGroup, error) {
	for g := Team; g <= Reserve; g++ {
		if g.String() == name {
			return g, nil
		}
	}

	return 0, ErrInvalidGroup(name)
}

// VestingAmount is the shared amount calculator of the push and pull paths:
// the share of the participant's allocation due at the given epoch, before
// clamping to the remaining balance.
func VestingAmount(group *Group, participant *Participant, epoch uint64) (*big.Int, error) {
	balance, ok := new(big.Int).SetString(participant.Balance, 10)
	if !ok {
		return nil, NewCustomError(http.StatusInternalServerError, "invalid balance in state", ErrInvalidAmount("balance", participant.Balance))
	}

	percentage := group.SteadyUnlockPct
	if epoch == 0 {
		percentage = group.InitialUnlockPct
	}

	amount := new(big.Int).Mul(balance, new(big.Int).SetUint64(percentage))
	return amount.Div(amount, big.NewInt(percentageDenominator)), nil
}

// IsAvailablePeriod reports whether the unlock window for the given epoch has
// opened. The bound is strict: the window opens one second after
// tge + cliff + delay × epoch.
func IsAvailablePeriod(epoch, cliff, tgeTimestamp, unlockDelay, now uint64) bool {
	return now > tgeTimestamp+cliff+unlockDelay*epoch
}
