package allocation

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
	"github.com/p2eengineering/kalp-sdk-public/response"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// TransactionContextInterface is the subset of the Kalp SDK transaction
// context the allocation contract relies on. The concrete SDK context
// satisfies it.
type TransactionContextInterface interface {
	GetState(key string) ([]byte, error)
	PutStateWithoutKYC(key string, value []byte) error
	DelStateWithoutKYC(key string) error
	GetTxTimestamp() (*timestamppb.Timestamp, error)
	GetChannelID() string
	SetEvent(name string, payload []byte) error
	InvokeChaincode(chaincodeName string, args [][]byte, channel string) response.Response
	GetClientIdentity() cid.ClientIdentity
}

type SmartContract struct {
	kalpsdk.Contract
}

// Initialize writes the six group records. Cliff, unlock delay and the two
// unlock percentages are fixed at deployment.
func (s *SmartContract) Initialize(ctx TransactionContextInterface) error {
	if err := IsSignerAllocationAdmin(ctx); err != nil {
		return err
	}

	existingGroup, err := ctx.GetState(fmt.Sprintf("%s_%s", groupKeyPrefix, Team.String()))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to get group state", err)
	}
	if existingGroup != nil {
		return NewCustomError(http.StatusConflict, "allocation groups are already initialized", nil)
	}

	for g := Team; g <= Reserve; g++ {
		groupState := &Group{
			Cliff:            groupCliffs[g],
			UnlockDelay:      groupUnlockDelays[g],
			InitialUnlockPct: groupInitialUnlockPcts[g],
			SteadyUnlockPct:  groupSteadyUnlockPcts[g],
		}
		if err := SetGroupState(ctx, g.String(), groupState); err != nil {
			return err
		}
		if err := EmitGroupInitialized(ctx, g.String(), groupState); err != nil {
			return err
		}
	}

	return nil
}

func (s *SmartContract) SetToken(ctx TransactionContextInterface, tokenAddress string) error {
	if err := IsSignerAllocationAdmin(ctx); err != nil {
		return err
	}

	if !IsContractAddressValid(tokenAddress) {
		return NewCustomError(http.StatusBadRequest, "invalid token address", ErrInvalidContractAddress(tokenAddress))
	}

	if err := SetContractAddress(ctx, tokenKey, tokenAddress); err != nil {
		return err
	}

	return EmitAddressConfigured(ctx, "TokenSet", tokenAddress)
}

// SetTokenSaleAddress registers the identity allowed to deliver the
// sale-ended signal.
func (s *SmartContract) SetTokenSaleAddress(ctx TransactionContextInterface, saleAddress string) error {
	if err := IsSignerAllocationAdmin(ctx); err != nil {
		return err
	}

	if !IsUserAddressValid(saleAddress) {
		return NewCustomError(http.StatusBadRequest, "invalid token sale address", ErrInvalidUserAddress(saleAddress))
	}

	if err := SetContractAddress(ctx, tokenSaleAddressKey, saleAddress); err != nil {
		return err
	}

	return EmitAddressConfigured(ctx, "TokenSaleAddressSet", saleAddress)
}

// AddParticipants registers allocations for a group. Participants are frozen
// once the TGE has passed; a repeated add for an address is a no-op.
func (s *SmartContract) AddParticipants(ctx TransactionContextInterface, group string, addresses []string, balances []string) error {
	if err := IsSignerAllocationAdmin(ctx); err != nil {
		return err
	}

	if _, err := groupFromName(group); err != nil {
		return NewCustomError(http.StatusBadRequest, "unknown allocation group", err)
	}

	tgeTimestamp, err := GetTimestamp(ctx, tgeTimestampKey)
	if err != nil {
		return err
	}
	if tgeTimestamp != 0 {
		return NewCustomError(http.StatusConflict, "participants are frozen after the TGE", ErrParticipantsFrozen)
	}

	if len(addresses) == 0 {
		return NewCustomError(http.StatusBadRequest, "no participants provided", ErrNoParticipants)
	}
	if len(addresses) != len(balances) {
		return NewCustomError(http.StatusBadRequest, "participants and balances mismatch", ErrArraysLengthMismatch(len(addresses), len(balances)))
	}

	added := 0
	totalAllocations := big.NewInt(0)
	for i := 0; i < len(addresses); i++ {
		wasAdded, err := addParticipant(ctx, group, addresses[i], balances[i])
		if err != nil {
			return err
		}
		if !wasAdded {
			continue
		}

		amount, _ := new(big.Int).SetString(balances[i], 10)
		totalAllocations.Add(totalAllocations, amount)
		added++
	}

	return EmitParticipantsAdded(ctx, group, added, totalAllocations.String())
}

// RemoveParticipant clears a participant's sub-ledger and tombstones their
// slot in the member list. Only possible before the TGE.
func (s *SmartContract) RemoveParticipant(ctx TransactionContextInterface, group string, address string) error {
	if err := IsSignerAllocationAdmin(ctx); err != nil {
		return err
	}

	if _, err := groupFromName(group); err != nil {
		return NewCustomError(http.StatusBadRequest, "unknown allocation group", err)
	}

	tgeTimestamp, err := GetTimestamp(ctx, tgeTimestampKey)
	if err != nil {
		return err
	}
	if tgeTimestamp != 0 {
		return NewCustomError(http.StatusConflict, "participants are frozen after the TGE", ErrParticipantsFrozen)
	}

	participant, err := GetParticipantState(ctx, group, address)
	if err != nil {
		return err
	}
	if participant == nil {
		return NewCustomError(http.StatusNotFound, "participant does not exist", ErrParticipantNotFound(group, address))
	}

	memberList, err := GetGroupMembers(ctx, group)
	if err != nil {
		return err
	}
	if participant.Index >= len(memberList) || memberList[participant.Index] != address {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("member list for group %s is inconsistent at index %d", group, participant.Index), nil)
	}

	memberList[participant.Index] = ""
	if err := SetGroupMembers(ctx, group, memberList); err != nil {
		return err
	}

	if err := DelParticipantState(ctx, group, address); err != nil {
		return err
	}

	return EmitParticipantRemoved(ctx, group, address)
}

// SetTGEPassed stamps the token generation event. One-shot; every group cliff
// and unlock window is measured from this anchor.
func (s *SmartContract) SetTGEPassed(ctx TransactionContextInterface) error {
	if err := IsSignerAllocationAdmin(ctx); err != nil {
		return err
	}

	tgeTimestamp, err := GetTimestamp(ctx, tgeTimestampKey)
	if err != nil {
		return err
	}
	if tgeTimestamp != 0 {
		return NewCustomError(http.StatusConflict, "TGE has already passed", ErrTGEAlreadyPassed)
	}

	now, err := GetTransactionTimestamp(ctx)
	if err != nil {
		return err
	}

	if err := SetTimestamp(ctx, tgeTimestampKey, now); err != nil {
		return err
	}

	return EmitTGEPassed(ctx, now)
}

// SetMainnetLaunched records the launch timestamp. Informational; requires
// the TGE to have passed first.
func (s *SmartContract) SetMainnetLaunched(ctx TransactionContextInterface) error {
	if err := IsSignerAllocationAdmin(ctx); err != nil {
		return err
	}

	tgeTimestamp, err := GetTimestamp(ctx, tgeTimestampKey)
	if err != nil {
		return err
	}
	if tgeTimestamp == 0 {
		return NewCustomError(http.StatusConflict, "TGE has not passed", ErrTGENotPassed)
	}

	launchTimestamp, err := GetTimestamp(ctx, mainnetLaunchKey)
	if err != nil {
		return err
	}
	if launchTimestamp != 0 {
		return NewCustomError(http.StatusConflict, "mainnet launch is already recorded", ErrMainnetAlreadyLive)
	}

	now, err := GetTransactionTimestamp(ctx)
	if err != nil {
		return err
	}

	if err := SetTimestamp(ctx, mainnetLaunchKey, now); err != nil {
		return err
	}

	return EmitMainnetLaunched(ctx, now)
}

// Distribute mints the currently due share to every live member of a group
// and then advances the group epoch once. Anyone may trigger it. Members
// whose own epoch has outrun the group epoch (through Claim) are skipped, as
// are tombstoned slots. Cost is linear in membership size; pagination is an
// external concern.
func (s *SmartContract) Distribute(ctx TransactionContextInterface, group string) error {
	if _, err := groupFromName(group); err != nil {
		return NewCustomError(http.StatusBadRequest, "unknown allocation group", err)
	}

	tgeTimestamp, err := GetTimestamp(ctx, tgeTimestampKey)
	if err != nil {
		return err
	}
	if tgeTimestamp == 0 {
		return NewCustomError(http.StatusConflict, "TGE has not passed", ErrTGENotPassed)
	}

	groupState, err := GetGroupState(ctx, group)
	if err != nil {
		return err
	}

	now, err := GetTransactionTimestamp(ctx)
	if err != nil {
		return err
	}

	if now < tgeTimestamp+groupState.Cliff {
		return NewCustomError(http.StatusForbidden, fmt.Sprintf("cliff for group %s has not passed", group), ErrCliffNotPassed)
	}

	scheduled := groupState.CurrentEpoch*groupState.SteadyUnlockPct/percentageDenominator + groupState.InitialUnlockPct
	if scheduled > percentageDenominator {
		return NewCustomError(http.StatusConflict, fmt.Sprintf("distribution schedule for group %s is exhausted", group), ErrScheduleExhausted)
	}

	if !IsAvailablePeriod(groupState.CurrentEpoch, groupState.Cliff, tgeTimestamp, groupState.UnlockDelay, now) {
		return NewCustomError(http.StatusForbidden, fmt.Sprintf("unlock window for epoch %d of group %s is not open", groupState.CurrentEpoch, group), ErrUnlockWindowNotOpen)
	}

	token, err := GetContractAddress(ctx, tokenKey)
	if err != nil {
		return err
	}
	if token == "" {
		return NewCustomError(http.StatusConflict, "distribution token is not configured", nil)
	}

	memberList, err := GetGroupMembers(ctx, group)
	if err != nil {
		return err
	}

	recipients := 0
	totalMinted := big.NewInt(0)
	for _, address := range memberList {
		if address == "" {
			continue
		}

		participant, err := GetParticipantState(ctx, group, address)
		if err != nil {
			return err
		}
		if participant == nil || participant.Epoch > groupState.CurrentEpoch {
			continue
		}

		due, err := VestingAmount(groupState, participant, participant.Epoch)
		if err != nil {
			return err
		}

		due, unlocked, err := clampToRemaining(due, participant)
		if err != nil {
			return err
		}

		if due.Sign() > 0 {
			if err := mintTokens(ctx, token, address, due); err != nil {
				return err
			}

			participant.UnlockedBalance = unlocked.Add(unlocked, due).String()
			totalMinted.Add(totalMinted, due)
			recipients++
		}

		participant.Epoch++
		if err := SetParticipantState(ctx, group, address, participant); err != nil {
			return err
		}
	}

	distributedEpoch := groupState.CurrentEpoch
	groupState.CurrentEpoch++
	if err := SetGroupState(ctx, group, groupState); err != nil {
		return err
	}

	return EmitTokensDistributed(ctx, group, distributedEpoch, recipients, totalMinted.String())
}

// Claim mints the caller's own due share, advancing only the caller's epoch.
// It shares the amount calculator, clamp and zero-due epoch handling with
// Distribute.
func (s *SmartContract) Claim(ctx TransactionContextInterface, group string) error {
	if _, err := groupFromName(group); err != nil {
		return NewCustomError(http.StatusBadRequest, "unknown allocation group", err)
	}

	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	tgeTimestamp, err := GetTimestamp(ctx, tgeTimestampKey)
	if err != nil {
		return err
	}
	if tgeTimestamp == 0 {
		return NewCustomError(http.StatusConflict, "TGE has not passed", ErrTGENotPassed)
	}

	groupState, err := GetGroupState(ctx, group)
	if err != nil {
		return err
	}

	participant, err := GetParticipantState(ctx, group, signer)
	if err != nil {
		return err
	}
	if participant == nil {
		return NewCustomError(http.StatusForbidden, "signer has no allocation", ErrParticipantNotFound(group, signer))
	}

	balance, ok := new(big.Int).SetString(participant.Balance, 10)
	if !ok {
		return NewCustomError(http.StatusInternalServerError, "invalid balance in state", ErrInvalidAmount("balance", participant.Balance))
	}
	unlockedBalance, ok := new(big.Int).SetString(participant.UnlockedBalance, 10)
	if !ok {
		return NewCustomError(http.StatusInternalServerError, "invalid unlocked balance in state", ErrInvalidAmount("unlockedBalance", participant.UnlockedBalance))
	}
	if unlockedBalance.Cmp(balance) >= 0 {
		return NewCustomError(http.StatusConflict, fmt.Sprintf("%s already unlocked the full group %s allocation", signer, group), ErrNothingToClaim)
	}

	now, err := GetTransactionTimestamp(ctx)
	if err != nil {
		return err
	}

	if !IsAvailablePeriod(participant.Epoch, groupState.Cliff, tgeTimestamp, groupState.UnlockDelay, now) {
		return NewCustomError(http.StatusForbidden, fmt.Sprintf("unlock window for epoch %d of group %s is not open", participant.Epoch, group), ErrUnlockWindowNotOpen)
	}

	due, err := VestingAmount(groupState, participant, participant.Epoch)
	if err != nil {
		return err
	}

	due, unlocked, err := clampToRemaining(due, participant)
	if err != nil {
		return err
	}

	// A zero-due epoch, such as the initial tranche of a group with no
	// initial unlock, still advances the caller's epoch like the group
	// sweep does; only the mint is skipped.
	if due.Sign() > 0 {
		token, err := GetContractAddress(ctx, tokenKey)
		if err != nil {
			return err
		}
		if token == "" {
			return NewCustomError(http.StatusConflict, "distribution token is not configured", nil)
		}

		if err := mintTokens(ctx, token, signer, due); err != nil {
			return err
		}

		participant.UnlockedBalance = unlocked.Add(unlocked, due).String()
	}

	claimEpoch := participant.Epoch
	participant.Epoch++
	if err := SetParticipantState(ctx, group, signer, participant); err != nil {
		return err
	}

	return EmitTokensClaimed(ctx, group, signer, claimEpoch, due.String())
}

// EndTokenSale is the sale engine's completion signal. Only the registered
// sale identity may deliver it; the only effect is the TokenSaleEnded event.
func (s *SmartContract) EndTokenSale(ctx TransactionContextInterface) error {
	saleAddress, err := GetContractAddress(ctx, tokenSaleAddressKey)
	if err != nil {
		return err
	}
	if saleAddress == "" {
		return NewCustomError(http.StatusConflict, "token sale identity is not registered", ErrTokenSaleUnregistered)
	}

	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}
	if signer != saleAddress {
		return NewCustomError(http.StatusUnauthorized, "signer is not the registered token sale", nil)
	}

	now, err := GetTransactionTimestamp(ctx)
	if err != nil {
		return err
	}

	return EmitTokenSaleEnded(ctx, signer, now)
}

func (s *SmartContract) GetGroup(ctx TransactionContextInterface, group string) (*Group, error) {
	if _, err := groupFromName(group); err != nil {
		return nil, NewCustomError(http.StatusBadRequest, "unknown allocation group", err)
	}

	return GetGroupState(ctx, group)
}

func (s *SmartContract) GetParticipant(ctx TransactionContextInterface, group string, address string) (*Participant, error) {
	if _, err := groupFromName(group); err != nil {
		return nil, NewCustomError(http.StatusBadRequest, "unknown allocation group", err)
	}
	if !IsUserAddressValid(address) {
		return nil, NewCustomError(http.StatusBadRequest, "invalid participant address", ErrInvalidUserAddress(address))
	}

	participant, err := GetParticipantState(ctx, group, address)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, NewCustomError(http.StatusNotFound, "participant does not exist", ErrParticipantNotFound(group, address))
	}

	return participant, nil
}

// ClaimableAmount returns the clamped amount a participant could claim right
// now, or "0" when their unlock window has not opened.
func (s *SmartContract) ClaimableAmount(ctx TransactionContextInterface, group string, address string) (string, error) {
	if _, err := groupFromName(group); err != nil {
		return "", NewCustomError(http.StatusBadRequest, "unknown allocation group", err)
	}

	tgeTimestamp, err := GetTimestamp(ctx, tgeTimestampKey)
	if err != nil {
		return "", err
	}
	if tgeTimestamp == 0 {
		return "0", nil
	}

	groupState, err := GetGroupState(ctx, group)
	if err != nil {
		return "", err
	}

	participant, err := GetParticipantState(ctx, group, address)
	if err != nil {
		return "", err
	}
	if participant == nil {
		return "0", nil
	}

	now, err := GetTransactionTimestamp(ctx)
	if err != nil {
		return "", err
	}

	if !IsAvailablePeriod(participant.Epoch, groupState.Cliff, tgeTimestamp, groupState.UnlockDelay, now) {
		return "0", nil
	}

	due, err := VestingAmount(groupState, participant, participant.Epoch)
	if err != nil {
		return "", err
	}

	due, _, err = clampToRemaining(due, participant)
	if err != nil {
		return "", err
	}

	return due.String(), nil
}
