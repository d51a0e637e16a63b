package allocation

type AllocationGroup int

const (
	allocationAdmin = "4f0ec91a7c53bd18e2b6a9f04d2157c880ac3de5"

	userAddressRegex     = `^[0-9a-fA-F]{40}$`
	contractAddressRegex = `^klp-[a-fA-F0-9]+-cc$`

	tgeTimestampKey     = "tgeTimestamp"
	mainnetLaunchKey    = "mainnetLaunchTimestamp"
	tokenKey            = "distributionToken"
	tokenSaleAddressKey = "tokenSaleAddress"

	groupKeyPrefix       = "group"
	memberListKeyPrefix  = "members"
	participantKeyPrefix = "participant"

	// Group percentages are whole percent units, 100 = 100%.
	percentageDenominator = 100

	mintFunction = "Mint"
)

const (
	Team AllocationGroup = iota
	Ecosystem
	Advisor
	Liquidity
	Marketing
	Reserve
)

const totalGroups = 6

func (g AllocationGroup) String() string {
	return [...]string{
		"Team",
		"Ecosystem",
		"Advisor",
		"Liquidity",
		"Marketing",
		"Reserve",
	}[g]
}

const day = uint64(24 * 60 * 60)

// Group unlock parameters, fixed at deployment: cliff after TGE, delay
// between unlock epochs, percentage released at epoch 0, percentage released
// at every later epoch.
var (
	groupCliffs = [totalGroups]uint64{
		360 * day, // Team
		0,         // Ecosystem
		180 * day, // Advisor
		0,         // Liquidity
		30 * day,  // Marketing
		540 * day, // Reserve
	}
	groupUnlockDelays = [totalGroups]uint64{
		30 * day,
		30 * day,
		30 * day,
		30 * day,
		30 * day,
		90 * day,
	}
	groupInitialUnlockPcts = [totalGroups]uint64{
		0,  // Team
		10, // Ecosystem
		0,  // Advisor
		25, // Liquidity
		10, // Marketing
		0,  // Reserve
	}
	groupSteadyUnlockPcts = [totalGroups]uint64{
		5,  // Team
		5,  // Ecosystem
		10, // Advisor
		15, // Liquidity
		10, // Marketing
		10, // Reserve
	}
)
