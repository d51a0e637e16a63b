package sale

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
// context the sale contract relies on. The concrete SDK context satisfies it.
type TransactionContextInterface interface {
	GetState(key string) ([]byte, error)
	PutStateWithoutKYC(key string, value []byte) error
	GetTxTimestamp() (*timestamppb.Timestamp, error)
	GetChannelID() string
	SetEvent(name string, payload []byte) error
	InvokeChaincode(chaincodeName string, args [][]byte, channel string) response.Response
	GetClientIdentity() cid.ClientIdentity
}

type SmartContract struct {
	kalpsdk.Contract
}

// Initialize writes the four round records and the sale state. Round caps,
// prices and cliffs are fixed at deployment and never change afterwards.
func (s *SmartContract) Initialize(ctx TransactionContextInterface) error {
	if err := IsSignerSaleAdmin(ctx); err != nil {
		return err
	}

	existingState, err := ctx.GetState(saleStateKey)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to get sale state", err)
	}
	if existingState != nil {
		return NewCustomError(http.StatusConflict, "sale is already initialized", nil)
	}

	for i := 0; i < totalRounds; i++ {
		round := &Round{
			Cap:       roundCaps[i],
			Price:     roundPrices[i],
			Cliff:     roundCliffs[i],
			TokenSold: "0",
		}
		if err := SetRoundState(ctx, i, round); err != nil {
			return err
		}
	}

	return SetSaleState(ctx, &SaleState{CurrentRound: 0, SaleActive: false})
}

func (s *SmartContract) SetSaleToken(ctx TransactionContextInterface, tokenAddress string) error {
	return s.configureAddress(ctx, saleTokenKey, "SaleTokenSet", tokenAddress)
}

func (s *SmartContract) SetPaymentToken(ctx TransactionContextInterface, tokenAddress string) error {
	return s.configureAddress(ctx, paymentTokenKey, "PaymentTokenSet", tokenAddress)
}

func (s *SmartContract) SetTreasuryWallet(ctx TransactionContextInterface, walletAddress string) error {
	if err := IsSignerSaleAdmin(ctx); err != nil {
		return err
	}

	if !IsUserAddressValid(walletAddress) {
		return NewCustomError(http.StatusBadRequest, "invalid treasury wallet", ErrInvalidUserAddress(walletAddress))
	}

	if err := SetContractAddress(ctx, treasuryWalletKey, walletAddress); err != nil {
		return err
	}

	return EmitAddressConfigured(ctx, "TreasuryWalletSet", walletAddress)
}

func (s *SmartContract) configureAddress(ctx TransactionContextInterface, key, eventName, address string) error {
	if err := IsSignerSaleAdmin(ctx); err != nil {
		return err
	}

	if !IsContractAddressValid(address) {
		return NewCustomError(http.StatusBadRequest, "invalid contract address", ErrInvalidContractAddress(address))
	}

	if err := SetContractAddress(ctx, key, address); err != nil {
		return err
	}

	return EmitAddressConfigured(ctx, eventName, address)
}

// StartSale re-arms the purchase gate. Round closure always clears it, so
// every round needs an explicit start.
func (s *SmartContract) StartSale(ctx TransactionContextInterface) error {
	if err := IsSignerSaleAdmin(ctx); err != nil {
		return err
	}

	state, err := GetSaleState(ctx)
	if err != nil {
		return err
	}

	if state.CurrentRound >= totalRounds {
		return NewCustomError(http.StatusConflict, "all rounds are exhausted", ErrSaleExhausted)
	}
	if state.SaleActive {
		return NewCustomError(http.StatusConflict, "sale is already active", nil)
	}

	state.SaleActive = true
	if err := SetSaleState(ctx, state); err != nil {
		return err
	}

	return EmitSaleStatusChanged(ctx, true)
}

func (s *SmartContract) PauseSale(ctx TransactionContextInterface) error {
	if err := IsSignerSaleAdmin(ctx); err != nil {
		return err
	}

	state, err := GetSaleState(ctx)
	if err != nil {
		return err
	}

	if !state.SaleActive {
		return NewCustomError(http.StatusConflict, "sale is not active", ErrSaleNotActive)
	}

	state.SaleActive = false
	if err := SetSaleState(ctx, state); err != nil {
		return err
	}

	return EmitSaleStatusChanged(ctx, false)
}

// AddToWhitelist marks addresses as eligible purchasers of a gated round.
// The public round is deliberately never whitelist-gated.
func (s *SmartContract) AddToWhitelist(ctx TransactionContextInterface, roundIndex int, addresses []string) error {
	if err := IsSignerSaleAdmin(ctx); err != nil {
		return err
	}

	if roundIndex < 0 || roundIndex >= publicRound {
		return NewCustomError(http.StatusBadRequest, "whitelist round out of range", ErrRoundOutOfRange(roundIndex))
	}
	if len(addresses) == 0 {
		return NewCustomError(http.StatusBadRequest, "no addresses provided", ErrCannotBeZero)
	}

	for _, address := range addresses {
		if !IsUserAddressValid(address) {
			return NewCustomError(http.StatusBadRequest, "invalid whitelist address", ErrInvalidUserAddress(address))
		}

		buyer, err := GetBuyerState(ctx, roundIndex, address)
		if err != nil {
			return err
		}

		buyer.Whitelisted = true
		if err := SetBuyerState(ctx, roundIndex, address, buyer); err != nil {
			return err
		}
	}

	return EmitWhitelistAdded(ctx, roundIndex, addresses)
}

// Purchase buys into the current round. The requested amount is clipped to
// the remaining round cap rather than rejected; payment is collected through
// the payment-asset ledger before any balance is credited. Filling the cap
// closes the round: the TGE timestamp is stamped, the sale gate clears and
// the round index advances. Closing the public round signals the token ledger
// that the sale is permanently over.
func (s *SmartContract) Purchase(ctx TransactionContextInterface, amount string, valueOffered string) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	state, err := GetSaleState(ctx)
	if err != nil {
		return err
	}

	if !state.SaleActive {
		return NewCustomError(http.StatusConflict, "purchasing is closed", ErrSaleNotActive)
	}
	if state.CurrentRound >= totalRounds {
		return NewCustomError(http.StatusConflict, "all rounds are exhausted", ErrSaleExhausted)
	}

	round, err := GetRoundState(ctx, state.CurrentRound)
	if err != nil {
		return err
	}

	buyer, err := GetBuyerState(ctx, state.CurrentRound, signer)
	if err != nil {
		return err
	}

	if state.CurrentRound != publicRound && !buyer.Whitelisted {
		return NewCustomError(http.StatusForbidden, fmt.Sprintf("%s is not whitelisted for round %d", signer, state.CurrentRound), ErrNotWhitelisted)
	}

	requested, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return NewCustomError(http.StatusBadRequest, "invalid purchase amount", ErrInvalidAmount("amount", amount))
	}
	if requested.Sign() <= 0 {
		return NewCustomError(http.StatusBadRequest, "purchase amount must be positive", ErrCannotBeZero)
	}

	offered, ok := new(big.Int).SetString(valueOffered, 10)
	if !ok {
		return NewCustomError(http.StatusBadRequest, "invalid offered value", ErrInvalidAmount("valueOffered", valueOffered))
	}

	cap, ok := new(big.Int).SetString(round.Cap, 10)
	if !ok {
		return NewCustomError(http.StatusInternalServerError, "invalid round cap in state", ErrInvalidAmount("cap", round.Cap))
	}
	sold, ok := new(big.Int).SetString(round.TokenSold, 10)
	if !ok {
		return NewCustomError(http.StatusInternalServerError, "invalid tokenSold in state", ErrInvalidAmount("tokenSold", round.TokenSold))
	}
	price, ok := new(big.Int).SetString(round.Price, 10)
	if !ok {
		return NewCustomError(http.StatusInternalServerError, "invalid round price in state", ErrInvalidAmount("price", round.Price))
	}

	// Clip to the remaining cap instead of rejecting oversized requests.
	remaining := new(big.Int).Sub(cap, sold)
	effective := requested
	if effective.Cmp(remaining) > 0 {
		effective = remaining
	}

	paymentToken, err := GetContractAddress(ctx, paymentTokenKey)
	if err != nil {
		return err
	}
	if paymentToken == "" {
		return NewCustomError(http.StatusConflict, "payment token is not configured", nil)
	}

	treasury, err := GetContractAddress(ctx, treasuryWalletKey)
	if err != nil {
		return err
	}
	if treasury == "" {
		return NewCustomError(http.StatusConflict, "treasury wallet is not configured", nil)
	}

	decimals, err := fetchPaymentDecimals(ctx, paymentToken)
	if err != nil {
		return err
	}

	payment := requiredPayment(effective, price, decimals)
	if offered.Cmp(payment) < 0 {
		return NewCustomError(http.StatusPaymentRequired, fmt.Sprintf("offered %s, required %s", offered, payment), ErrInsufficientPayment)
	}

	if err := collectPayment(ctx, paymentToken, signer, treasury, payment); err != nil {
		return err
	}

	bought, ok := new(big.Int).SetString(buyer.Bought, 10)
	if !ok {
		return NewCustomError(http.StatusInternalServerError, "invalid bought balance in state", ErrInvalidAmount("bought", buyer.Bought))
	}

	buyer.Bought = new(big.Int).Add(bought, effective).String()
	if err := SetBuyerState(ctx, state.CurrentRound, signer, buyer); err != nil {
		return err
	}

	sold.Add(sold, effective)
	round.TokenSold = sold.String()

	closedRound := state.CurrentRound
	capReached := sold.Cmp(cap) == 0
	if capReached {
		now, err := GetTransactionTimestamp(ctx)
		if err != nil {
			return err
		}
		round.TGETimestamp = now
	}

	if err := SetRoundState(ctx, closedRound, round); err != nil {
		return err
	}

	if err := EmitTokensPurchased(ctx, signer, closedRound, effective.String(), payment.String()); err != nil {
		return err
	}

	if !capReached {
		return nil
	}

	state.CurrentRound++
	state.SaleActive = false
	if err := SetSaleState(ctx, state); err != nil {
		return err
	}

	if err := EmitRoundClosed(ctx, closedRound, round.TGETimestamp, state.CurrentRound); err != nil {
		return err
	}

	if state.CurrentRound < totalRounds {
		return nil
	}

	saleToken, err := GetContractAddress(ctx, saleTokenKey)
	if err != nil {
		return err
	}
	if saleToken == "" {
		return NewCustomError(http.StatusConflict, "sale token is not configured", nil)
	}

	if err := signalSaleEnded(ctx, saleToken); err != nil {
		return err
	}

	return EmitSaleEnded(ctx, round.TGETimestamp)
}

// Claim releases the caller's vested share of a closed round. The amount is
// a share of the original bought balance per the round table, not of the
// remainder; the shipped tables sum to exactly 100% per round.
func (s *SmartContract) Claim(ctx TransactionContextInterface, roundIndex int) error {
	if roundIndex < 0 || roundIndex >= totalRounds {
		return NewCustomError(http.StatusBadRequest, "claim round out of range", ErrRoundOutOfRange(roundIndex))
	}

	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	round, err := GetRoundState(ctx, roundIndex)
	if err != nil {
		return err
	}

	if round.TGETimestamp == 0 {
		return NewCustomError(http.StatusConflict, fmt.Sprintf("round %d has not closed", roundIndex), ErrRoundNotClosed)
	}

	buyer, err := GetBuyerState(ctx, roundIndex, signer)
	if err != nil {
		return err
	}

	bought, ok := new(big.Int).SetString(buyer.Bought, 10)
	if !ok {
		return NewCustomError(http.StatusInternalServerError, "invalid bought balance in state", ErrInvalidAmount("bought", buyer.Bought))
	}
	unlocked, ok := new(big.Int).SetString(buyer.Unlocked, 10)
	if !ok {
		return NewCustomError(http.StatusInternalServerError, "invalid unlocked balance in state", ErrInvalidAmount("unlocked", buyer.Unlocked))
	}

	if bought.Sign() == 0 {
		return NewCustomError(http.StatusForbidden, fmt.Sprintf("%s bought nothing in round %d", signer, roundIndex), ErrNothingToClaim)
	}
	if unlocked.Cmp(bought) >= 0 {
		return NewCustomError(http.StatusConflict, fmt.Sprintf("%s already unlocked the full round %d balance", signer, roundIndex), ErrAlreadyUnlocked)
	}

	now, err := GetTransactionTimestamp(ctx)
	if err != nil {
		return err
	}

	cliffEnd := round.TGETimestamp + round.Cliff
	if now < cliffEnd || now < cliffEnd+buyer.VestingEpoch*vestingInterval {
		return NewCustomError(http.StatusForbidden, fmt.Sprintf("claim window for epoch %d of round %d is not open", buyer.VestingEpoch, roundIndex), ErrClaimWindowNotOpen)
	}

	percentage := UnlockPercentage(roundIndex, buyer.VestingEpoch)
	amount := new(big.Int).Mul(bought, big.NewInt(percentage))
	amount.Div(amount, big.NewInt(percentageDenominator))

	saleToken, err := GetContractAddress(ctx, saleTokenKey)
	if err != nil {
		return err
	}
	if saleToken == "" {
		return NewCustomError(http.StatusConflict, "sale token is not configured", nil)
	}

	if err := releaseTokens(ctx, saleToken, signer, amount); err != nil {
		return err
	}

	buyer.Unlocked = unlocked.Add(unlocked, amount).String()
	claimEpoch := buyer.VestingEpoch
	buyer.VestingEpoch++
	if err := SetBuyerState(ctx, roundIndex, signer, buyer); err != nil {
		return err
	}

	return EmitTokensClaimed(ctx, signer, roundIndex, claimEpoch, amount.String())
}

// LockedBalance returns the caller's still-locked balance of a whitelisted
// round. The public round is excluded from this query.
func (s *SmartContract) LockedBalance(ctx TransactionContextInterface, roundIndex int) (string, error) {
	if roundIndex < 0 || roundIndex >= publicRound {
		return "", NewCustomError(http.StatusBadRequest, "locked balance round out of range", ErrRoundOutOfRange(roundIndex))
	}

	signer, err := GetUserId(ctx)
	if err != nil {
		return "", NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	buyer, err := GetBuyerState(ctx, roundIndex, signer)
	if err != nil {
		return "", err
	}

	if !buyer.Whitelisted {
		return "", NewCustomError(http.StatusForbidden, fmt.Sprintf("%s is not whitelisted for round %d", signer, roundIndex), ErrNotWhitelisted)
	}

	bought, ok := new(big.Int).SetString(buyer.Bought, 10)
	if !ok {
		return "", NewCustomError(http.StatusInternalServerError, "invalid bought balance in state", ErrInvalidAmount("bought", buyer.Bought))
	}
	unlocked, ok := new(big.Int).SetString(buyer.Unlocked, 10)
	if !ok {
		return "", NewCustomError(http.StatusInternalServerError, "invalid unlocked balance in state", ErrInvalidAmount("unlocked", buyer.Unlocked))
	}

	return new(big.Int).Sub(bought, unlocked).String(), nil
}

func (s *SmartContract) GetRound(ctx TransactionContextInterface, roundIndex int) (*Round, error) {
	if roundIndex < 0 || roundIndex >= totalRounds {
		return nil, NewCustomError(http.StatusBadRequest, "round out of range", ErrRoundOutOfRange(roundIndex))
	}

	return GetRoundState(ctx, roundIndex)
}

func (s *SmartContract) GetBuyer(ctx TransactionContextInterface, roundIndex int, address string) (*Buyer, error) {
	if roundIndex < 0 || roundIndex >= totalRounds {
		return nil, NewCustomError(http.StatusBadRequest, "round out of range", ErrRoundOutOfRange(roundIndex))
	}
	if !IsUserAddressValid(address) {
		return nil, NewCustomError(http.StatusBadRequest, "invalid buyer address", ErrInvalidUserAddress(address))
	}

	return GetBuyerState(ctx, roundIndex, address)
}

func (s *SmartContract) GetSaleStatus(ctx TransactionContextInterface) (*SaleState, error) {
	return GetSaleState(ctx)
}
