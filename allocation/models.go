package allocation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Group is one of the six post-launch vesting cohorts. Unlock parameters are
// immutable after Initialize; CurrentEpoch advances only through Distribute.
type Group struct {
	Cliff            uint64 `json:"cliff"`
	UnlockDelay      uint64 `json:"unlockDelay"`
	InitialUnlockPct uint64 `json:"initialUnlockPct"`
	SteadyUnlockPct  uint64 `json:"steadyUnlockPct"`
	CurrentEpoch     uint64 `json:"currentEpoch"`
}

// Participant is the per-account sub-ledger of a group. Balance is fixed once
// non-zero; Index is the participant's slot in the group member list.
type Participant struct {
	Balance         string `json:"balance"`
	UnlockedBalance string `json:"unlockedBalance"`
	Epoch           uint64 `json:"epoch"`
	Index           int    `json:"index"`
}

func GetGroupState(ctx TransactionContextInterface, group string) (*Group, error) {
	groupKey := fmt.Sprintf("%s_%s", groupKeyPrefix, group)
	groupAsBytes, err := ctx.GetState(groupKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get group with Key %s", groupKey), err)
	}
	if groupAsBytes == nil {
		return nil, NewCustomError(http.StatusNotFound, fmt.Sprintf("group with Key %s does not exist", groupKey), nil)
	}

	var groupState Group
	err = json.Unmarshal(groupAsBytes, &groupState)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal group", err)
	}

	return &groupState, nil
}

func SetGroupState(ctx TransactionContextInterface, group string, groupState *Group) error {
	groupKey := fmt.Sprintf("%s_%s", groupKeyPrefix, group)
	groupAsBytes, err := json.Marshal(groupState)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal group", err)
	}

	err = ctx.PutStateWithoutKYC(groupKey, groupAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set group", err)
	}

	return nil
}

// GetParticipantState returns nil without error when the participant has no
// record in the group.
func GetParticipantState(ctx TransactionContextInterface, group, address string) (*Participant, error) {
	participantKey := fmt.Sprintf("%s_%s_%s", participantKeyPrefix, group, address)
	participantAsBytes, err := ctx.GetState(participantKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get participant with Key %s", participantKey), err)
	}
	if participantAsBytes == nil {
		return nil, nil
	}

	var participant Participant
	err = json.Unmarshal(participantAsBytes, &participant)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal participant", err)
	}

	return &participant, nil
}

func SetParticipantState(ctx TransactionContextInterface, group, address string, participant *Participant) error {
	participantKey := fmt.Sprintf("%s_%s_%s", participantKeyPrefix, group, address)
	participantAsBytes, err := json.Marshal(participant)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal participant", err)
	}

	err = ctx.PutStateWithoutKYC(participantKey, participantAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set participant", err)
	}

	return nil
}

func DelParticipantState(ctx TransactionContextInterface, group, address string) error {
	participantKey := fmt.Sprintf("%s_%s_%s", participantKeyPrefix, group, address)
	err := ctx.DelStateWithoutKYC(participantKey)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to delete participant with Key %s", participantKey), err)
	}

	return nil
}

// GetGroupMembers returns the group's ordered member list. Removal leaves an
// empty-string tombstone, so iteration must skip empty slots.
func GetGroupMembers(ctx TransactionContextInterface, group string) ([]string, error) {
	memberListKey := fmt.Sprintf("%s_%s", memberListKeyPrefix, group)
	memberListJSON, err := ctx.GetState(memberListKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get member list with Key %s", memberListKey), err)
	}
	if memberListJSON == nil {
		return []string{}, nil
	}

	var memberList []string
	err = json.Unmarshal(memberListJSON, &memberList)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to unmarshal member list for group %s", group), err)
	}

	return memberList, nil
}

func SetGroupMembers(ctx TransactionContextInterface, group string, memberList []string) error {
	memberListKey := fmt.Sprintf("%s_%s", memberListKeyPrefix, group)
	memberListJSON, err := json.Marshal(memberList)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to marshal member list for group %s", group), err)
	}

	err = ctx.PutStateWithoutKYC(memberListKey, memberListJSON)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set member list for group %s", group), err)
	}

	return nil
}

// GetTimestamp reads a one-shot timestamp; zero means the event has not
// occurred.
func GetTimestamp(ctx TransactionContextInterface, key string) (uint64, error) {
	timestampAsBytes, err := ctx.GetState(key)
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get timestamp with Key %s", key), err)
	}
	if timestampAsBytes == nil {
		return 0, nil
	}

	timestamp, err := strconv.ParseUint(string(timestampAsBytes), 10, 64)
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to parse timestamp with Key %s", key), err)
	}

	return timestamp, nil
}

func SetTimestamp(ctx TransactionContextInterface, key string, timestamp uint64) error {
	err := ctx.PutStateWithoutKYC(key, []byte(strconv.FormatUint(timestamp, 10)))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set timestamp with Key %s", key), err)
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
