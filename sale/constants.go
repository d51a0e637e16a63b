package sale

const (
	saleAdmin = "4f0ec91a7c53bd18e2b6a9f04d2157c880ac3de5"

	userAddressRegex     = `^[0-9a-fA-F]{40}$`
	contractAddressRegex = `^klp-[a-fA-F0-9]+-cc$`

	saleStateKey      = "salestate"
	saleTokenKey      = "saleToken"
	paymentTokenKey   = "paymentToken"
	treasuryWalletKey = "treasuryWallet"

	roundKeyPrefix = "round"
	buyerKeyPrefix = "buyer"

	totalRounds = 4
	publicRound = 3

	// A vesting epoch is a fixed 30-day month, counted from the end of the
	// round cliff.
	vestingInterval = uint64(30 * 24 * 60 * 60)

	// Unlock percentages are expressed in basis points, 10000 = 100%.
	percentageDenominator = 10000

	transferFunction     = "Transfer"
	transferFromFunction = "TransferFrom"
	decimalsFunction     = "Decimals"
	endTokenSaleFunction = "EndTokenSale"
)

// Round parameters are fixed at deployment. Caps are in token wei, prices in
// payment-asset wei per whole token.
var (
	roundCaps = [totalRounds]string{
		"50000000000000000000000000",  // seed, 50M SLT
		"100000000000000000000000000", // private, 100M SLT
		"150000000000000000000000000", // strategic, 150M SLT
		"200000000000000000000000000", // public, 200M SLT
	}
	roundPrices = [totalRounds]string{
		"20000000000000000",  // 0.02
		"40000000000000000",  // 0.04
		"60000000000000000",  // 0.06
		"100000000000000000", // 0.10
	}
	roundCliffs = [totalRounds]uint64{
		60 * 24 * 60 * 60,
		45 * 24 * 60 * 60,
		30 * 24 * 60 * 60,
		14 * 24 * 60 * 60,
	}
)
