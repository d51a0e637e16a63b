package allocation

import (
	"fmt"
	"math/big"
	"net/http"
)

// addParticipant registers one allocation. First write wins: an address whose
// balance is already non-zero is left untouched and the call reports it was
// skipped, so a repeated add can never change an allocation.
func addParticipant(ctx TransactionContextInterface, group, address, amount string) (bool, error) {
	if !IsUserAddressValid(address) {
		return false, NewCustomError(http.StatusBadRequest, "invalid participant address", ErrInvalidUserAddress(address))
	}

	balance, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return false, NewCustomError(http.StatusBadRequest, "invalid allocation amount", ErrInvalidAmount("participant", address))
	}
	if balance.Sign() <= 0 {
		return false, NewCustomError(http.StatusBadRequest, "allocation must be positive", ErrZeroAllocation(address))
	}

	existing, err := GetParticipantState(ctx, group, address)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.Balance != "0" {
		return false, nil
	}

	memberList, err := GetGroupMembers(ctx, group)
	if err != nil {
		return false, err
	}

	memberList = append(memberList, address)
	if err := SetGroupMembers(ctx, group, memberList); err != nil {
		return false, err
	}

	participant := &Participant{
		Balance:         amount,
		UnlockedBalance: "0",
		Epoch:           0,
		Index:           len(memberList) - 1,
	}
	if err := SetParticipantState(ctx, group, address, participant); err != nil {
		return false, err
	}

	return true, nil
}

// clampToRemaining caps a due amount so the unlocked balance can never pass
// the allocation.
func clampToRemaining(due *big.Int, participant *Participant) (*big.Int, *big.Int, error) {
	balance, ok := new(big.Int).SetString(participant.Balance, 10)
	if !ok {
		return nil, nil, NewCustomError(http.StatusInternalServerError, "invalid balance in state", ErrInvalidAmount("balance", participant.Balance))
	}
	unlocked, ok := new(big.Int).SetString(participant.UnlockedBalance, 10)
	if !ok {
		return nil, nil, NewCustomError(http.StatusInternalServerError, "invalid unlocked balance in state", ErrInvalidAmount("unlockedBalance", participant.UnlockedBalance))
	}

	remaining := new(big.Int).Sub(balance, unlocked)
	if due.Cmp(remaining) > 0 {
		due = remaining
	}

	return due, unlocked, nil
}

func mintTokens(ctx TransactionContextInterface, token, recipient string, amount *big.Int) error {
	output := ctx.InvokeChaincode(token, [][]byte{
		[]byte(mintFunction),
		[]byte(recipient),
		[]byte(amount.String()),
	}, ctx.GetChannelID())
	if output.Status != http.StatusOK {
		return NewCustomError(int(output.Status), fmt.Sprintf("mint on %s rejected: %s", token, output.Message), ErrTransferFailed)
	}
	if string(output.Payload) != "true" {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("mint on %s returned %s", token, string(output.Payload)), ErrTransferFailed)
	}

	return nil
}
