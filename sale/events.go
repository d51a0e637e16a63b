package sale

import (
	"encoding/json"
	"fmt"
)

type TokensPurchasedEvent struct {
	Buyer   string `json:"buyer"`
	Round   int    `json:"round"`
	Amount  string `json:"amount"`
	Payment string `json:"payment"`
}

type RoundClosedEvent struct {
	Round        int    `json:"round"`
	TGETimestamp uint64 `json:"tgeTimestamp"`
	NextRound    int    `json:"nextRound"`
}

type TokensClaimedEvent struct {
	Claimer string `json:"claimer"`
	Round   int    `json:"round"`
	Epoch   uint64 `json:"epoch"`
	Amount  string `json:"amount"`
}

type WhitelistAddedEvent struct {
	Round     int      `json:"round"`
	Addresses []string `json:"addresses"`
}

type SaleStatusChangedEvent struct {
	Active bool `json:"active"`
}

type SaleEndedEvent struct {
	Timestamp uint64 `json:"timestamp"`
}

type AddressConfiguredEvent struct {
	Address string `json:"address"`
}

func emitEvent(ctx TransactionContextInterface, name string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to obtain JSON encoding: %v", err)
	}

	err = ctx.SetEvent(name, payloadJSON)
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}

	return nil
}

func EmitTokensPurchased(ctx TransactionContextInterface, buyer string, round int, amount, payment string) error {
	return emitEvent(ctx, "TokensPurchased", TokensPurchasedEvent{
		Buyer:   buyer,
		Round:   round,
		Amount:  amount,
		Payment: payment,
	})
}

func EmitRoundClosed(ctx TransactionContextInterface, round int, tgeTimestamp uint64, nextRound int) error {
	return emitEvent(ctx, "RoundClosed", RoundClosedEvent{
		Round:        round,
		TGETimestamp: tgeTimestamp,
		NextRound:    nextRound,
	})
}

func EmitTokensClaimed(ctx TransactionContextInterface, claimer string, round int, epoch uint64, amount string) error {
	return emitEvent(ctx, "TokensClaimed", TokensClaimedEvent{
		Claimer: claimer,
		Round:   round,
		Epoch:   epoch,
		Amount:  amount,
	})
}

func EmitWhitelistAdded(ctx TransactionContextInterface, round int, addresses []string) error {
	return emitEvent(ctx, "WhitelistAdded", WhitelistAddedEvent{
		Round:     round,
		Addresses: addresses,
	})
}

func EmitSaleStatusChanged(ctx TransactionContextInterface, active bool) error {
	return emitEvent(ctx, "SaleStatusChanged", SaleStatusChangedEvent{Active: active})
}

func EmitSaleEnded(ctx TransactionContextInterface, timestamp uint64) error {
	return emitEvent(ctx, "SaleEnded", SaleEndedEvent{Timestamp: timestamp})
}

func EmitAddressConfigured(ctx TransactionContextInterface, name, address string) error {
	return emitEvent(ctx, name, AddressConfiguredEvent{Address: address})
}
