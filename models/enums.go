package models

import (
	"github.com/shopspring/decimal"
)

// AccountType is the persisted account kind. The kind fixes which balance
// category the account rolls into and which configs it recognizes.
type AccountType string

const (
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeLoan       AccountType = "LOAN"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeRetirement AccountType = "RETIREMENT"
	AccountTypeAsset      AccountType = "ASSET"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeExternal   AccountType = "EXTERNAL"
)

var AllAccountTypes = []AccountType{
	AccountTypeSavings,
	AccountTypeChecking,
	AccountTypeLoan,
	AccountTypeInvestment,
	AccountTypeRetirement,
	AccountTypeAsset,
	AccountTypeCreditCard,
	AccountTypeExternal,
}

var accountTotalTypes = map[AccountType]TotalType{
	AccountTypeSavings:    TotalTypeShortTermAsset,
	AccountTypeChecking:   TotalTypeCash,
	AccountTypeLoan:       TotalTypeLongTermLiability,
	AccountTypeInvestment: TotalTypeLongTermAsset,
	AccountTypeRetirement: TotalTypeRetirementAsset,
	AccountTypeAsset:      TotalTypePhysicalAsset,
	AccountTypeCreditCard: TotalTypeCashLiability,
	AccountTypeExternal:   TotalTypeIgnored,
}

// accountConfigNames lists the config names each kind recognizes, with the
// declared value type. Kinds not present recognize no configs at all.
var accountConfigNames = map[AccountType]map[string]ConfigType{
	AccountTypeSavings: {ConfigNameRate: ConfigTypeDecimal},
	AccountTypeLoan:    {ConfigNameRate: ConfigTypeDecimal},
}

func (t AccountType) Valid() bool {
	_, ok := accountTotalTypes[t]
	return ok
}

func (t AccountType) TotalType() TotalType {
	return accountTotalTypes[t]
}

// ConfigNames returns the recognized config names for the kind. Never nil.
func (t AccountType) ConfigNames() map[string]ConfigType {
	names := accountConfigNames[t]
	if names == nil {
		return map[string]ConfigType{}
	}
	return names
}

// TotalType is the balance category an account's values aggregate into.
type TotalType string

const (
	TotalTypeIgnored            TotalType = "IGNORED"
	TotalTypeCash               TotalType = "CASH"
	TotalTypeShortTermAsset     TotalType = "SHORT_TERM_ASSET"
	TotalTypeLongTermAsset      TotalType = "LONG_TERM_ASSET"
	TotalTypePhysicalAsset      TotalType = "PHYSICAL_ASSET"
	TotalTypeRetirementAsset    TotalType = "RETIREMENT_ASSET"
	TotalTypeCashLiability      TotalType = "CASH_LIABILITY"
	TotalTypeShortTermLiability TotalType = "SHORT_TERM_LIABILITY"
	TotalTypeLongTermLiability  TotalType = "LONG_TERM_LIABILITY"
)

// AllTotalTypes fixes the category order used in snapshots.
var AllTotalTypes = []TotalType{
	TotalTypeIgnored,
	TotalTypeCash,
	TotalTypeShortTermAsset,
	TotalTypeLongTermAsset,
	TotalTypePhysicalAsset,
	TotalTypeRetirementAsset,
	TotalTypeCashLiability,
	TotalTypeShortTermLiability,
	TotalTypeLongTermLiability,
}

type totalTypePolicy struct {
	calculation CalculationType
	grouping    FlowGroupingType
}

var totalTypePolicies = map[TotalType]totalTypePolicy{
	TotalTypeIgnored:            {CalculationTypeIgnored, FlowGroupingTypeIgnored},
	TotalTypeCash:               {CalculationTypeAsset, FlowGroupingTypeCash},
	TotalTypeShortTermAsset:     {CalculationTypeAsset, FlowGroupingTypeGain},
	TotalTypeLongTermAsset:      {CalculationTypeAsset, FlowGroupingTypeGain},
	TotalTypePhysicalAsset:      {CalculationTypeAsset, FlowGroupingTypeAppreciation},
	TotalTypeRetirementAsset:    {CalculationTypeAsset, FlowGroupingTypeGain},
	TotalTypeCashLiability:      {CalculationTypeLiability, FlowGroupingTypeCash},
	TotalTypeShortTermLiability: {CalculationTypeLiability, FlowGroupingTypeInterest},
	TotalTypeLongTermLiability:  {CalculationTypeLiability, FlowGroupingTypeInterest},
}

func (t TotalType) Valid() bool {
	_, ok := totalTypePolicies[t]
	return ok
}

func (t TotalType) CalculationType() CalculationType {
	return totalTypePolicies[t].calculation
}

func (t TotalType) FlowGroupingType() FlowGroupingType {
	return totalTypePolicies[t].grouping
}

// CalculationType decides how a category contributes to net worth and how
// its flow is derived.
type CalculationType string

const (
	CalculationTypeIgnored   CalculationType = "IGNORED"
	CalculationTypeAsset     CalculationType = "ASSET"
	CalculationTypeLiability CalculationType = "LIABILITY"
)

// AddNet applies the category's signed net-worth contribution.
func (t CalculationType) AddNet(net decimal.Decimal, balance decimal.Decimal) decimal.Decimal {
	switch t {
	case CalculationTypeAsset:
		return net.Add(balance)
	case CalculationTypeLiability:
		return net.Sub(balance)
	default:
		return net
	}
}

// Flow derives the part of a category's balance not explained by transfers.
// Liabilities invert the sign: debt growing beyond what was borrowed is a
// negative flow, not a gain.
func (t CalculationType) Flow(balance decimal.Decimal, transfer decimal.Decimal) decimal.Decimal {
	flow := balance.Sub(transfer)
	if t == CalculationTypeLiability {
		return flow.Neg()
	}
	return flow
}

// FlowGroupingType is the coarse bucket category flows roll up into.
type FlowGroupingType string

const (
	FlowGroupingTypeIgnored      FlowGroupingType = "IGNORED"
	FlowGroupingTypeExternal     FlowGroupingType = "EXTERNAL"
	FlowGroupingTypeCash         FlowGroupingType = "CASH"
	FlowGroupingTypeGain         FlowGroupingType = "GAIN"
	FlowGroupingTypeAppreciation FlowGroupingType = "APPRECIATION"
	FlowGroupingTypeInterest     FlowGroupingType = "INTEREST"
)

var AllFlowGroupingTypes = []FlowGroupingType{
	FlowGroupingTypeIgnored,
	FlowGroupingTypeExternal,
	FlowGroupingTypeCash,
	FlowGroupingTypeGain,
	FlowGroupingTypeAppreciation,
	FlowGroupingTypeInterest,
}

// TransactionType is the persisted ledger entry kind.
type TransactionType string

const (
	TransactionTypeBalance  TransactionType = "BALANCE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeBalance || t == TransactionTypeTransfer
}

// ConfigType declares how an account config's stored string value parses.
type ConfigType string

const (
	ConfigTypeDecimal ConfigType = "BIG_DECIMAL"
)

const ConfigNameRate = "rate"

func (t ConfigType) Valid() bool {
	return t == ConfigTypeDecimal
}

// ValidValue reports whether value parses under the declared type.
func (t ConfigType) ValidValue(value string) bool {
	switch t {
	case ConfigTypeDecimal:
		_, err := decimal.NewFromString(value)
		return err == nil
	default:
		return false
	}
}

// SettingKey is the persisted key of a global setting.
type SettingKey string

const (
	SettingKeyDefaultTransactionFromAccountId    SettingKey = "DEFAULT_TRANSACTION_FROM_ACCOUNT_ID"
	SettingKeyTransferWithoutBalanceIgnoredAccts SettingKey = "TRANSFER_WITHOUT_BALANCE_IGNORED_ACCOUNTS"
)

func (k SettingKey) Valid() bool {
	return k == SettingKeyDefaultTransactionFromAccountId || k == SettingKeyTransferWithoutBalanceIgnoredAccts
}
