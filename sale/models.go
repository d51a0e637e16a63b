package sale

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Round is one of the four sequential sale phases. Cap, price and cliff are
// immutable after Initialize; TokenSold and TGETimestamp advance as the sale
// progresses. A TGETimestamp of zero means the round has not closed.
type Round struct {
	Cap          string `json:"cap"`
	Price        string `json:"price"`
	Cliff        uint64 `json:"cliff"`
	TokenSold    string `json:"tokenSold"`
	TGETimestamp uint64 `json:"tgeTimestamp"`
}

// Buyer is the per-account sub-ledger of a round.
type Buyer struct {
	Whitelisted  bool   `json:"whitelisted"`
	Bought       string `json:"bought"`
	Unlocked     string `json:"unlocked"`
	VestingEpoch uint64 `json:"vestingEpoch"`
}

// SaleState tracks the active round. CurrentRound equal to totalRounds means
// every round has been exhausted and the sale is permanently over.
type SaleState struct {
	CurrentRound int  `json:"currentRound"`
	SaleActive   bool `json:"saleActive"`
}

func GetRoundState(ctx TransactionContextInterface, roundIndex int) (*Round, error) {
	roundKey := fmt.Sprintf("%s_%d", roundKeyPrefix, roundIndex)
	roundAsBytes, err := ctx.GetState(roundKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get round with Key %s", roundKey), err)
	}
	if roundAsBytes == nil {
		return nil, NewCustomError(http.StatusNotFound, fmt.Sprintf("round with Key %s does not exist", roundKey), nil)
	}

	var round Round
	err = json.Unmarshal(roundAsBytes, &round)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal round", err)
	}

	return &round, nil
}

func SetRoundState(ctx TransactionContextInterface, roundIndex int, round *Round) error {
	roundKey := fmt.Sprintf("%s_%d", roundKeyPrefix, roundIndex)
	roundAsBytes, err := json.Marshal(round)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal round", err)
	}

	err = ctx.PutStateWithoutKYC(roundKey, roundAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set round", err)
	}

	return nil
}

// GetBuyerState returns the buyer sub-ledger for a round, or a fresh zeroed
// record when the account has never interacted with the round.
func GetBuyerState(ctx TransactionContextInterface, roundIndex int, address string) (*Buyer, error) {
	buyerKey := fmt.Sprintf("%s_%d_%s", buyerKeyPrefix, roundIndex, address)
	buyerAsBytes, err := ctx.GetState(buyerKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get buyer with Key %s", buyerKey), err)
	}
	if buyerAsBytes == nil {
		return &Buyer{Bought: "0", Unlocked: "0"}, nil
	}

	var buyer Buyer
	err = json.Unmarshal(buyerAsBytes, &buyer)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal buyer", err)
	}

	return &buyer, nil
}

func SetBuyerState(ctx TransactionContextInterface, roundIndex int, address string, buyer *Buyer) error {
	buyerKey := fmt.Sprintf("%s_%d_%s", buyerKeyPrefix, roundIndex, address)
	buyerAsBytes, err := json.Marshal(buyer)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal buyer", err)
	}

	err = ctx.PutStateWithoutKYC(buyerKey, buyerAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set buyer", err)
	}

	return nil
}

func GetSaleState(ctx TransactionContextInterface) (*SaleState, error) {
	stateAsBytes, err := ctx.GetState(saleStateKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get sale state with Key %s", saleStateKey), err)
	}
	if stateAsBytes == nil {
		return nil, NewCustomError(http.StatusNotFound, "sale has not been initialized", nil)
	}

	var state SaleState
	err = json.Unmarshal(stateAsBytes, &state)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal sale state", err)
	}

	return &state, nil
}

func SetSaleState(ctx TransactionContextInterface, state *SaleState) error {
	stateAsBytes, err := json.Marshal(state)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal sale state", err)
	}

	err = ctx.PutStateWithoutKYC(saleStateKey, stateAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set sale state", err)
	}

	return nil
}

func GetContractAddress(ctx TransactionContextInterface, key string) (string, error) {
	addressBytes, err := ctx.GetState(key)
	if err != nil {
		return "", NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get address with Key %s", key), err)
	}

	return string(addressBytes), nil
}

// SetContractAddress registers a collaborator address exactly once.
func SetContractAddress(ctx TransactionContextInterface, key, address string) error {
	existingAddress, err := ctx.GetState(key)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get address with Key %s", key), err)
	}
	if existingAddress != nil && string(existingAddress) != "" {
		return NewCustomError(http.StatusConflict, fmt.Sprintf("address with Key %s is already set", key), nil)
	}

	err = ctx.PutStateWithoutKYC(key, []byte(address))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set address with Key %s", key), err)
	}

	return nil
}
