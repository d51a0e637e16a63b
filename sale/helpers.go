package sale

import (
	"encoding/base64"
	"fmt"
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

func IsSignerSaleAdmin(ctx TransactionContextInterface) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to get client id", err)
	}

	if signer != saleAdmin {
		return NewCustomError(http.StatusUnauthorized, "signer is not the sale admin", nil)
	}

	return nil
}

// GetTransactionTimestamp returns the host-ordered transaction time in unix
// seconds. This is the only clock the contract reads.
func GetTransactionTimestamp(ctx TransactionContextInterface) (uint64, error) {
	timestamp, err := ctx.GetTxTimestamp()
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to get transaction timestamp", err)
	}

	return uint64(timestamp.GetSeconds()), nil
}

// UnlockPercentage is the round vesting table: the share of the originally
// bought balance, in basis points, released by the given claim epoch. It is a
// pure function of (round, epoch); each row sums to exactly 100%.
func UnlockPercentage(roundIndex int, vestingEpoch uint64) int64 {
	switch roundIndex {
	case 0, 1:
		if vestingEpoch == 0 {
			return 1000
		}
		return 900
	case 2:
		switch vestingEpoch {
		case 0:
			return 1500
		case 1:
			return 1000
		default:
			return 750
		}
	default:
		if vestingEpoch == 0 {
			return 5000
		}
		return 1000
	}
}
