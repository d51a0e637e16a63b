package sale

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"
)

// requiredPayment computes the payment-asset cost of a purchase:
// amount × price / 10^decimals, floor division.
func requiredPayment(amount, price *big.Int, decimals uint64) *big.Int {
	divisor := new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(decimals), nil)

	payment := new(big.Int).Mul(amount, price)
	return payment.Div(payment, divisor)
}

func fetchPaymentDecimals(ctx TransactionContextInterface, paymentToken string) (uint64, error) {
	output := ctx.InvokeChaincode(paymentToken, [][]byte{[]byte(decimalsFunction)}, ctx.GetChannelID())
	if output.Status != http.StatusOK {
		return 0, NewCustomError(int(output.Status), fmt.Sprintf("failed to query decimals on %s: %s", paymentToken, output.Message), nil)
	}

	decimals, err := strconv.ParseUint(string(output.Payload), 10, 64)
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("invalid decimals payload from %s", paymentToken), err)
	}

	return decimals, nil
}

func collectPayment(ctx TransactionContextInterface, paymentToken, payer, payee string, amount *big.Int) error {
	output := ctx.InvokeChaincode(paymentToken, [][]byte{
		[]byte(transferFromFunction),
		[]byte(payer),
		[]byte(payee),
		[]byte(amount.String()),
	}, ctx.GetChannelID())
	if output.Status != http.StatusOK {
		return NewCustomError(int(output.Status), fmt.Sprintf("payment transfer on %s rejected: %s", paymentToken, output.Message), ErrTransferFailed)
	}
	if string(output.Payload) != "true" {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("payment transfer on %s returned %s", paymentToken, string(output.Payload)), ErrTransferFailed)
	}

	return nil
}

func releaseTokens(ctx TransactionContextInterface, saleToken, recipient string, amount *big.Int) error {
	output := ctx.InvokeChaincode(saleToken, [][]byte{
		[]byte(transferFunction),
		[]byte(recipient),
		[]byte(amount.String()),
	}, ctx.GetChannelID())
	if output.Status != http.StatusOK {
		return NewCustomError(int(output.Status), fmt.Sprintf("token transfer on %s rejected: %s", saleToken, output.Message), ErrTransferFailed)
	}
	if string(output.Payload) != "true" {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("token transfer on %s returned %s", saleToken, string(output.Payload)), ErrTransferFailed)
	}

	return nil
}

// signalSaleEnded tells the token ledger the sale is permanently over.
// Idempotency of the signal is the ledger's responsibility.
func signalSaleEnded(ctx TransactionContextInterface, saleToken string) error {
	output := ctx.InvokeChaincode(saleToken, [][]byte{[]byte(endTokenSaleFunction)}, ctx.GetChannelID())
	if output.Status != http.StatusOK {
		return NewCustomError(int(output.Status), fmt.Sprintf("failed to signal sale end on %s: %s", saleToken, output.Message), nil)
	}

	return nil
}
