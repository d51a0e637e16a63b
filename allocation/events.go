package allocation

import (
	"encoding/json"
	"fmt"
)

type GroupInitializedEvent struct {
	Group            string `json:"group"`
	Cliff            uint64 `json:"cliff"`
	UnlockDelay      uint64 `json:"unlockDelay"`
	InitialUnlockPct uint64 `json:"initialUnlockPct"`
	SteadyUnlockPct  uint64 `json:"steadyUnlockPct"`
}

type ParticipantsAddedEvent struct {
	Group            string `json:"group"`
	Added            int    `json:"added"`
	TotalAllocations string `json:"totalAllocations"`
}

type ParticipantRemovedEvent struct {
	Group   string `json:"group"`
	Address string `json:"address"`
}

type TimestampSetEvent struct {
	Timestamp uint64 `json:"timestamp"`
}

type TokensDistributedEvent struct {
	Group       string `json:"group"`
	Epoch       uint64 `json:"epoch"`
	Recipients  int    `json:"recipients"`
	TotalMinted string `json:"totalMinted"`
}

type TokensClaimedEvent struct {
	Group   string `json:"group"`
	Claimer string `json:"claimer"`
	Epoch   uint64 `json:"epoch"`
	Amount  string `json:"amount"`
}

type TokenSaleEndedEvent struct {
	Signer    string `json:"signer"`
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

func EmitGroupInitialized(ctx TransactionContextInterface, group string, groupState *Group) error {
	return emitEvent(ctx, "GroupInitialized", GroupInitializedEvent{
		Group:            group,
		Cliff:            groupState.Cliff,
		UnlockDelay:      groupState.UnlockDelay,
		InitialUnlockPct: groupState.InitialUnlockPct,
		SteadyUnlockPct:  groupState.SteadyUnlockPct,
	})
}

func EmitParticipantsAdded(ctx TransactionContextInterface, group string, added int, totalAllocations string) error {
	return emitEvent(ctx, "ParticipantsAdded", ParticipantsAddedEvent{
		Group:            group,
		Added:            added,
		TotalAllocations: totalAllocations,
	})
}

func EmitParticipantRemoved(ctx TransactionContextInterface, group, address string) error {
	return emitEvent(ctx, "ParticipantRemoved", ParticipantRemovedEvent{
		Group:   group,
		Address: address,
	})
}

func EmitTGEPassed(ctx TransactionContextInterface, timestamp uint64) error {
	return emitEvent(ctx, "TGEPassed", TimestampSetEvent{Timestamp: timestamp})
}

func EmitMainnetLaunched(ctx TransactionContextInterface, timestamp uint64) error {
	return emitEvent(ctx, "MainnetLaunched", TimestampSetEvent{Timestamp: timestamp})
}

func EmitTokensDistributed(ctx TransactionContextInterface, group string, epoch uint64, recipients int, totalMinted string) error {
	return emitEvent(ctx, "TokensDistributed", TokensDistributedEvent{
		Group:       group,
		Epoch:       epoch,
		Recipients:  recipients,
		TotalMinted: totalMinted,
	})
}

func EmitTokensClaimed(ctx TransactionContextInterface, group, claimer string, epoch uint64, amount string) error {
	return emitEvent(ctx, "TokensClaimed", TokensClaimedEvent{
		Group:   group,
		Claimer: claimer,
		Epoch:   epoch,
		Amount:  amount,
	})
}

func EmitTokenSaleEnded(ctx TransactionContextInterface, signer string, timestamp uint64) error {
	return emitEvent(ctx, "TokenSaleEnded", TokenSaleEndedEvent{
		Signer:    signer,
		Timestamp: timestamp,
	})
}

func EmitAddressConfigured(ctx TransactionContextInterface, name, address string) error {
	return emitEvent(ctx, name, AddressConfiguredEvent{Address: address})
}
