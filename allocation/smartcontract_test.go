package allocation_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/p2eengineering/kalp-sdk-public/response"
	"github.com/seedlaunch/Seedlaunch-token/allocation"
	"github.com/seedlaunch/Seedlaunch-token/allocation/mocks"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	allocationAdmin = "4f0ec91a7c53bd18e2b6a9f04d2157c880ac3de5"
	participantOne  = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	participantTwo  = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	participantTri  = "cccccccccccccccccccccccccccccccccccccccc"
	saleIdentity    = "1234567890abcdef1234567890abcdef12345678"
	tokenAddress    = "klp-6f1e2d3c4b-cc"

	dayInSeconds = uint64(24 * 60 * 60)
	tgeTime      = int64(1700000000)
)

//go:generate counterfeiter -o mocks/transactioncontext.go -fake-name TransactionContext . transactionContext
type transactionContext interface {
	allocation.TransactionContextInterface
}

//go:generate counterfeiter -o mocks/clientidentity.go -fake-name ClientIdentity . clientIdentity
type clientIdentity interface {
	cid.ClientIdentity
}

func SetUserID(transactionContext *mocks.TransactionContext, userID string) {
	completeId := fmt.Sprintf("x509::CN=%s,O=Organization,L=City,ST=State,C=Country", userID)
	b64ID := base64.StdEncoding.EncodeToString([]byte(completeId))

	clientIdentity := &mocks.ClientIdentity{}
	clientIdentity.GetIDReturns(b64ID, nil)
	transactionContext.GetClientIdentityReturns(clientIdentity)
}

// newMockContext wires a TransactionContext fake to an in-memory world state.
// Mint invocations succeed by default.
func newMockContext() (*mocks.TransactionContext, map[string][]byte) {
	worldState := map[string][]byte{}
	ctx := &mocks.TransactionContext{}
	ctx.GetStateStub = func(s string) ([]byte, error) {
		data, found := worldState[s]
		if found {
			return data, nil
		}
		return nil, nil
	}
	ctx.PutStateWithoutKYCStub = func(s string, b []byte) error {
		worldState[s] = b
		return nil
	}
	ctx.DelStateWithoutKYCStub = func(s string) error {
		delete(worldState, s)
		return nil
	}
	ctx.GetChannelIDReturns("kalptantra")
	ctx.GetTxTimestampReturns(&timestamppb.Timestamp{Seconds: tgeTime}, nil)
	ctx.InvokeChaincodeStub = func(chaincode string, args [][]byte, channel string) response.Response {
		return response.Response{Response: peer.Response{Status: http.StatusOK, Payload: []byte("true")}}
	}
	return ctx, worldState
}

func setTxTime(ctx *mocks.TransactionContext, seconds int64) {
	ctx.GetTxTimestampReturns(&timestamppb.Timestamp{Seconds: seconds}, nil)
}

func initializeAllocation(t *testing.T, ctx *mocks.TransactionContext) *allocation.SmartContract {
	t.Helper()

	contract := &allocation.SmartContract{}
	SetUserID(ctx, allocationAdmin)
	require.NoError(t, contract.Initialize(ctx))
	return contract
}

func lastEvent(t *testing.T, ctx *mocks.TransactionContext, name string, payload interface{}) {
	t.Helper()

	for i := ctx.SetEventCallCount() - 1; i >= 0; i-- {
		eventName, eventPayload := ctx.SetEventArgsForCall(i)
		if eventName == name {
			require.NoError(t, json.Unmarshal(eventPayload, payload))
			return
		}
	}
	t.Fatalf("event %s was never emitted", name)
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	ctx, worldState := newMockContext()
	contract := &allocation.SmartContract{}

	SetUserID(ctx, participantOne)
	err := contract.Initialize(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not the allocation admin")

	SetUserID(ctx, allocationAdmin)
	require.NoError(t, contract.Initialize(ctx))

	for _, name := range []string{"Team", "Ecosystem", "Advisor", "Liquidity", "Marketing", "Reserve"} {
		require.NotEmpty(t, worldState[fmt.Sprintf("group_%s", name)])
	}

	team, err := contract.GetGroup(ctx, "Team")
	require.NoError(t, err)
	require.Equal(t, 360*dayInSeconds, team.Cliff)
	require.Equal(t, 30*dayInSeconds, team.UnlockDelay)
	require.Equal(t, uint64(0), team.InitialUnlockPct)
	require.Equal(t, uint64(5), team.SteadyUnlockPct)
	require.Zero(t, team.CurrentEpoch)

	reserve, err := contract.GetGroup(ctx, "Reserve")
	require.NoError(t, err)
	require.Equal(t, 540*dayInSeconds, reserve.Cliff)
	require.Equal(t, 90*dayInSeconds, reserve.UnlockDelay)
	require.Equal(t, uint64(10), reserve.SteadyUnlockPct)

	err = contract.Initialize(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already initialized")

	_, err = contract.GetGroup(ctx, "Founders")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidGroup")
}

func TestConfigureAddresses(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)

	err := contract.SetToken(ctx, "not-a-contract")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidContractAddress")

	err = contract.SetTokenSaleAddress(ctx, tokenAddress)
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidUserAddress")

	require.NoError(t, contract.SetToken(ctx, tokenAddress))
	require.NoError(t, contract.SetTokenSaleAddress(ctx, saleIdentity))

	err = contract.SetToken(ctx, "klp-0000000000-cc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already set")

	SetUserID(ctx, participantOne)
	err = contract.SetToken(ctx, tokenAddress)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not the allocation admin")
}

func TestAddParticipants(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)

	err := contract.AddParticipants(ctx, "Founders", []string{participantOne}, []string{"1000"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidGroup")

	err = contract.AddParticipants(ctx, "Team", nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrNoParticipants)

	err = contract.AddParticipants(ctx, "Team", []string{participantOne, participantTwo}, []string{"1000"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ArraysLengthMismatch")

	err = contract.AddParticipants(ctx, "Team", []string{"short"}, []string{"1000"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidUserAddress")

	err = contract.AddParticipants(ctx, "Team", []string{participantOne}, []string{"0"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ZeroAllocation")

	require.NoError(t, contract.AddParticipants(ctx, "Team",
		[]string{participantOne, participantTwo},
		[]string{"1000", "2000"}))

	var added allocation.ParticipantsAddedEvent
	lastEvent(t, ctx, "ParticipantsAdded", &added)
	require.Equal(t, 2, added.Added)
	require.Equal(t, "3000", added.TotalAllocations)

	participant, err := contract.GetParticipant(ctx, "Team", participantOne)
	require.NoError(t, err)
	require.Equal(t, "1000", participant.Balance)
	require.Equal(t, "0", participant.UnlockedBalance)
	require.Equal(t, 0, participant.Index)
	require.Zero(t, participant.Epoch)

	SetUserID(ctx, participantOne)
	err = contract.AddParticipants(ctx, "Team", []string{participantTri}, []string{"500"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not the allocation admin")
}

func TestRepeatedAddIsNoOp(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)

	require.NoError(t, contract.AddParticipants(ctx, "Advisor", []string{participantOne}, []string{"1000"}))

	// A second add for the same address changes nothing, whatever balance it
	// carries.
	require.NoError(t, contract.AddParticipants(ctx, "Advisor", []string{participantOne}, []string{"9999"}))

	var added allocation.ParticipantsAddedEvent
	lastEvent(t, ctx, "ParticipantsAdded", &added)
	require.Equal(t, 0, added.Added)
	require.Equal(t, "0", added.TotalAllocations)

	participant, err := contract.GetParticipant(ctx, "Advisor", participantOne)
	require.NoError(t, err)
	require.Equal(t, "1000", participant.Balance)

	members, err := allocation.GetGroupMembers(ctx, "Advisor")
	require.NoError(t, err)
	require.Equal(t, []string{participantOne}, members)
}

func TestRemoveParticipant(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)

	err := contract.RemoveParticipant(ctx, "Team", participantOne)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ParticipantNotFound")

	require.NoError(t, contract.AddParticipants(ctx, "Team",
		[]string{participantOne, participantTwo},
		[]string{"1000", "2000"}))

	require.NoError(t, contract.RemoveParticipant(ctx, "Team", participantOne))

	_, err = contract.GetParticipant(ctx, "Team", participantOne)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")

	// Removal tombstones the slot instead of compacting, so surviving
	// indices stay valid.
	members, err := allocation.GetGroupMembers(ctx, "Team")
	require.NoError(t, err)
	require.Equal(t, []string{"", participantTwo}, members)

	participant, err := contract.GetParticipant(ctx, "Team", participantTwo)
	require.NoError(t, err)
	require.Equal(t, 1, participant.Index)
}

func TestTGEAndMainnetLifecycle(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)

	err := contract.SetMainnetLaunched(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrTGENotPassed)

	require.NoError(t, contract.SetTGEPassed(ctx))

	err = contract.SetTGEPassed(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrTGEAlreadyPassed)

	// The participant set is frozen from the TGE on.
	err = contract.AddParticipants(ctx, "Team", []string{participantOne}, []string{"1000"})
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrParticipantsFrozen)

	err = contract.RemoveParticipant(ctx, "Team", participantOne)
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrParticipantsFrozen)

	require.NoError(t, contract.SetMainnetLaunched(ctx))

	err = contract.SetMainnetLaunched(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrMainnetAlreadyLive)
}

func TestDistributeGates(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)

	err := contract.Distribute(ctx, "Founders")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidGroup")

	err = contract.Distribute(ctx, "Marketing")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrTGENotPassed)

	require.NoError(t, contract.AddParticipants(ctx, "Marketing", []string{participantOne}, []string{"1000"}))

	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.SetTGEPassed(ctx))

	// Marketing carries a 30 day cliff.
	setTxTime(ctx, tgeTime+int64(30*dayInSeconds)-1)
	err = contract.Distribute(ctx, "Marketing")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrCliffNotPassed)

	// The unlock window opens strictly after the cliff boundary.
	setTxTime(ctx, tgeTime+int64(30*dayInSeconds))
	err = contract.Distribute(ctx, "Marketing")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrUnlockWindowNotOpen)

	setTxTime(ctx, tgeTime+int64(30*dayInSeconds)+1)
	err = contract.Distribute(ctx, "Marketing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "token is not configured")
}

func TestDistributeMintsAndSkipsTombstones(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)
	require.NoError(t, contract.SetToken(ctx, tokenAddress))

	// Marketing: 30 day cliff, 10% initial, 10% per later epoch.
	require.NoError(t, contract.AddParticipants(ctx, "Marketing",
		[]string{participantOne, participantTwo, participantTri},
		[]string{"1000", "2000", "500"}))
	require.NoError(t, contract.RemoveParticipant(ctx, "Marketing", participantTwo))

	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.SetTGEPassed(ctx))

	setTxTime(ctx, tgeTime+int64(30*dayInSeconds)+1)
	require.NoError(t, contract.Distribute(ctx, "Marketing"))

	var distributed allocation.TokensDistributedEvent
	lastEvent(t, ctx, "TokensDistributed", &distributed)
	require.Equal(t, uint64(0), distributed.Epoch)
	require.Equal(t, 2, distributed.Recipients)
	require.Equal(t, "150", distributed.TotalMinted)

	minted := map[string]string{}
	for i := 0; i < ctx.InvokeChaincodeCallCount(); i++ {
		chaincode, args, channel := ctx.InvokeChaincodeArgsForCall(i)
		require.Equal(t, tokenAddress, chaincode)
		require.Equal(t, "kalptantra", channel)
		require.Equal(t, "Mint", string(args[0]))
		minted[string(args[1])] = string(args[2])
	}
	require.Equal(t, map[string]string{participantOne: "100", participantTri: "50"}, minted)

	groupState, err := contract.GetGroup(ctx, "Marketing")
	require.NoError(t, err)
	require.Equal(t, uint64(1), groupState.CurrentEpoch)

	participant, err := contract.GetParticipant(ctx, "Marketing", participantOne)
	require.NoError(t, err)
	require.Equal(t, "100", participant.UnlockedBalance)
	require.Equal(t, uint64(1), participant.Epoch)

	// The epoch window only opens once per unlock delay.
	err = contract.Distribute(ctx, "Marketing")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrUnlockWindowNotOpen)
}

func TestDistributeDrainsScheduleExactly(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)
	require.NoError(t, contract.SetToken(ctx, tokenAddress))

	require.NoError(t, contract.AddParticipants(ctx, "Marketing", []string{participantOne}, []string{"1000"}))

	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.SetTGEPassed(ctx))

	// 10% at epoch 0 plus 10% for nine more epochs releases the whole
	// allocation.
	cliff := 30 * dayInSeconds
	for epoch := uint64(0); epoch < 10; epoch++ {
		setTxTime(ctx, tgeTime+int64(cliff+epoch*30*dayInSeconds)+1)
		require.NoError(t, contract.Distribute(ctx, "Marketing"))
	}

	participant, err := contract.GetParticipant(ctx, "Marketing", participantOne)
	require.NoError(t, err)
	require.Equal(t, "1000", participant.UnlockedBalance)

	// Further rounds clamp to the exhausted balance and mint nothing.
	setTxTime(ctx, tgeTime+int64(cliff+10*30*dayInSeconds)+1)
	require.NoError(t, contract.Distribute(ctx, "Marketing"))

	var distributed allocation.TokensDistributedEvent
	lastEvent(t, ctx, "TokensDistributed", &distributed)
	require.Equal(t, 0, distributed.Recipients)
	require.Equal(t, "0", distributed.TotalMinted)

	participant, err = contract.GetParticipant(ctx, "Marketing", participantOne)
	require.NoError(t, err)
	require.Equal(t, "1000", participant.UnlockedBalance)
}

func TestClaimSchedule(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)
	require.NoError(t, contract.SetToken(ctx, tokenAddress))

	// Liquidity: no cliff, 25% initial, 15% per later epoch.
	require.NoError(t, contract.AddParticipants(ctx, "Liquidity", []string{participantOne}, []string{"1000"}))

	SetUserID(ctx, participantOne)

	err := contract.Claim(ctx, "Liquidity")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrTGENotPassed)

	SetUserID(ctx, allocationAdmin)
	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.SetTGEPassed(ctx))

	SetUserID(ctx, participantTwo)
	setTxTime(ctx, tgeTime+1)
	err = contract.Claim(ctx, "Liquidity")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ParticipantNotFound")

	SetUserID(ctx, participantOne)
	require.NoError(t, contract.Claim(ctx, "Liquidity"))

	participant, err := contract.GetParticipant(ctx, "Liquidity", participantOne)
	require.NoError(t, err)
	require.Equal(t, "250", participant.UnlockedBalance)
	require.Equal(t, uint64(1), participant.Epoch)

	// The next window has not opened yet.
	err = contract.Claim(ctx, "Liquidity")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrUnlockWindowNotOpen)

	// 25% + 5 × 15% drains the allocation exactly.
	for epoch := uint64(1); epoch <= 5; epoch++ {
		setTxTime(ctx, tgeTime+int64(epoch*30*dayInSeconds)+1)
		require.NoError(t, contract.Claim(ctx, "Liquidity"))
	}

	participant, err = contract.GetParticipant(ctx, "Liquidity", participantOne)
	require.NoError(t, err)
	require.Equal(t, "1000", participant.UnlockedBalance)
	require.Equal(t, uint64(6), participant.Epoch)

	setTxTime(ctx, tgeTime+int64(6*30*dayInSeconds)+1)
	err = contract.Claim(ctx, "Liquidity")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrNothingToClaim)
}

func TestClaimAdvancesThroughZeroInitialEpoch(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)
	require.NoError(t, contract.SetToken(ctx, tokenAddress))

	// Team: 360 day cliff, nothing at epoch 0, 5% per later epoch.
	require.NoError(t, contract.AddParticipants(ctx, "Team", []string{participantOne}, []string{"1000"}))

	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.SetTGEPassed(ctx))

	SetUserID(ctx, participantOne)

	cliff := 360 * dayInSeconds

	// The empty initial tranche mints nothing but still advances the epoch,
	// so the steady tranches stay reachable through the pull path alone.
	setTxTime(ctx, tgeTime+int64(cliff)+1)
	require.NoError(t, contract.Claim(ctx, "Team"))

	participant, err := contract.GetParticipant(ctx, "Team", participantOne)
	require.NoError(t, err)
	require.Equal(t, "0", participant.UnlockedBalance)
	require.Equal(t, uint64(1), participant.Epoch)
	require.Zero(t, ctx.InvokeChaincodeCallCount())

	// 20 steady tranches of 5% drain the allocation exactly.
	for epoch := uint64(1); epoch <= 20; epoch++ {
		setTxTime(ctx, tgeTime+int64(cliff+epoch*30*dayInSeconds)+1)
		require.NoError(t, contract.Claim(ctx, "Team"))
	}

	participant, err = contract.GetParticipant(ctx, "Team", participantOne)
	require.NoError(t, err)
	require.Equal(t, "1000", participant.UnlockedBalance)
	require.Equal(t, uint64(21), participant.Epoch)
	require.Equal(t, 20, ctx.InvokeChaincodeCallCount())

	setTxTime(ctx, tgeTime+int64(cliff+21*30*dayInSeconds)+1)
	err = contract.Claim(ctx, "Team")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrNothingToClaim)
}

func TestClaimThenDistributeNeverDoublePays(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)
	require.NoError(t, contract.SetToken(ctx, tokenAddress))

	require.NoError(t, contract.AddParticipants(ctx, "Liquidity",
		[]string{participantOne, participantTwo},
		[]string{"1000", "2000"}))

	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.SetTGEPassed(ctx))

	// participantOne claims epoch 0 on their own.
	SetUserID(ctx, participantOne)
	setTxTime(ctx, tgeTime+1)
	require.NoError(t, contract.Claim(ctx, "Liquidity"))

	// The group sweep for the same epoch skips the claimer.
	require.NoError(t, contract.Distribute(ctx, "Liquidity"))

	var distributed allocation.TokensDistributedEvent
	lastEvent(t, ctx, "TokensDistributed", &distributed)
	require.Equal(t, 1, distributed.Recipients)
	require.Equal(t, "500", distributed.TotalMinted)

	participant, err := contract.GetParticipant(ctx, "Liquidity", participantOne)
	require.NoError(t, err)
	require.Equal(t, "250", participant.UnlockedBalance)
	require.Equal(t, uint64(1), participant.Epoch)

	participant, err = contract.GetParticipant(ctx, "Liquidity", participantTwo)
	require.NoError(t, err)
	require.Equal(t, "500", participant.UnlockedBalance)
	require.Equal(t, uint64(1), participant.Epoch)
}

func TestRejectedMintLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)
	require.NoError(t, contract.SetToken(ctx, tokenAddress))

	require.NoError(t, contract.AddParticipants(ctx, "Liquidity", []string{participantOne}, []string{"1000"}))

	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.SetTGEPassed(ctx))

	ctx.InvokeChaincodeReturns(response.Response{
		Response: peer.Response{Status: http.StatusInternalServerError, Message: "mint refused"},
	})

	SetUserID(ctx, participantOne)
	setTxTime(ctx, tgeTime+1)
	err := contract.Claim(ctx, "Liquidity")
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrTransferFailed)

	participant, err := contract.GetParticipant(ctx, "Liquidity", participantOne)
	require.NoError(t, err)
	require.Equal(t, "0", participant.UnlockedBalance)
	require.Zero(t, participant.Epoch)
}

func TestClaimableAmount(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)

	require.NoError(t, contract.AddParticipants(ctx, "Ecosystem", []string{participantOne}, []string{"1000"}))

	// Before the TGE nothing is claimable.
	claimable, err := contract.ClaimableAmount(ctx, "Ecosystem", participantOne)
	require.NoError(t, err)
	require.Equal(t, "0", claimable)

	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.SetTGEPassed(ctx))

	// Non-participants read zero rather than an error.
	claimable, err = contract.ClaimableAmount(ctx, "Ecosystem", participantTwo)
	require.NoError(t, err)
	require.Equal(t, "0", claimable)

	// Ecosystem has no cliff: the 10% initial tranche opens right after the
	// TGE.
	setTxTime(ctx, tgeTime+1)
	claimable, err = contract.ClaimableAmount(ctx, "Ecosystem", participantOne)
	require.NoError(t, err)
	require.Equal(t, "100", claimable)
}

func TestEndTokenSale(t *testing.T) {
	t.Parallel()

	ctx, _ := newMockContext()
	contract := initializeAllocation(t, ctx)

	SetUserID(ctx, saleIdentity)
	err := contract.EndTokenSale(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, allocation.ErrTokenSaleUnregistered)

	SetUserID(ctx, allocationAdmin)
	require.NoError(t, contract.SetTokenSaleAddress(ctx, saleIdentity))

	err = contract.EndTokenSale(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not the registered token sale")

	SetUserID(ctx, saleIdentity)
	setTxTime(ctx, tgeTime)
	require.NoError(t, contract.EndTokenSale(ctx))

	var ended allocation.TokenSaleEndedEvent
	lastEvent(t, ctx, "TokenSaleEnded", &ended)
	require.Equal(t, saleIdentity, ended.Signer)
	require.Equal(t, uint64(tgeTime), ended.Timestamp)
}

func TestIsAvailablePeriod(t *testing.T) {
	t.Parallel()

	tge := uint64(1000)
	cliff := uint64(100)
	delay := uint64(50)

	// The bound is strict at every epoch.
	require.False(t, allocation.IsAvailablePeriod(0, cliff, tge, delay, 1100))
	require.True(t, allocation.IsAvailablePeriod(0, cliff, tge, delay, 1101))
	require.False(t, allocation.IsAvailablePeriod(2, cliff, tge, delay, 1200))
	require.True(t, allocation.IsAvailablePeriod(2, cliff, tge, delay, 1201))
}

func TestVestingAmount(t *testing.T) {
	t.Parallel()

	groupState := &allocation.Group{InitialUnlockPct: 25, SteadyUnlockPct: 15}
	participant := &allocation.Participant{Balance: "1000", UnlockedBalance: "0"}

	amount, err := allocation.VestingAmount(groupState, participant, 0)
	require.NoError(t, err)
	require.Equal(t, "250", amount.String())

	amount, err = allocation.VestingAmount(groupState, participant, 3)
	require.NoError(t, err)
	require.Equal(t, "150", amount.String())

	participant.Balance = "not-a-number"
	_, err = allocation.VestingAmount(groupState, participant, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidAmount")
}
