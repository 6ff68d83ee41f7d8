package models_test

import (
	"testing"

	"bitbucket.org/mmdatafocus/networth_backend/models"
	"github.com/shopspring/decimal"
)

func TestAccountTypeTotalTypes(t *testing.T) {
	cases := map[models.AccountType]models.TotalType{
		models.AccountTypeSavings:    models.TotalTypeShortTermAsset,
		models.AccountTypeChecking:   models.TotalTypeCash,
		models.AccountTypeLoan:       models.TotalTypeLongTermLiability,
		models.AccountTypeInvestment: models.TotalTypeLongTermAsset,
		models.AccountTypeRetirement: models.TotalTypeRetirementAsset,
		models.AccountTypeAsset:      models.TotalTypePhysicalAsset,
		models.AccountTypeCreditCard: models.TotalTypeCashLiability,
		models.AccountTypeExternal:   models.TotalTypeIgnored,
	}
	for accountType, want := range cases {
		if got := accountType.TotalType(); got != want {
			t.Errorf("%s: expected %s, got %s", accountType, want, got)
		}
	}
}

func TestEveryTotalTypeHasAPolicy(t *testing.T) {
	for _, totalType := range models.AllTotalTypes {
		if !totalType.Valid() {
			t.Errorf("%s reported invalid", totalType)
		}
		calculation := totalType.CalculationType()
		grouping := totalType.FlowGroupingType()
		if totalType == models.TotalTypeIgnored {
			if calculation != models.CalculationTypeIgnored || grouping != models.FlowGroupingTypeIgnored {
				t.Errorf("ignored total type must have ignored policies")
			}
			continue
		}
		if calculation == models.CalculationTypeIgnored {
			t.Errorf("%s: unexpected ignored calculation", totalType)
		}
		if grouping == models.FlowGroupingTypeIgnored {
			t.Errorf("%s: unexpected ignored flow grouping", totalType)
		}
	}
}

func TestAddNetSigns(t *testing.T) {
	net := decimal.Zero
	net = models.CalculationTypeAsset.AddNet(net, decimal.NewFromInt(100))
	net = models.CalculationTypeLiability.AddNet(net, decimal.NewFromInt(30))
	net = models.CalculationTypeIgnored.AddNet(net, decimal.NewFromInt(1000))
	if !net.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected 70, got %s", net)
	}
}

func TestFlowSigns(t *testing.T) {
	balance := decimal.NewFromInt(120)
	transfer := decimal.NewFromInt(20)

	if got := models.CalculationTypeAsset.Flow(balance, transfer); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("asset flow: expected 100, got %s", got)
	}
	if got := models.CalculationTypeLiability.Flow(balance, transfer); !got.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("liability flow: expected -100, got %s", got)
	}
	if got := models.CalculationTypeIgnored.Flow(balance, transfer); !got.IsZero() {
		t.Fatalf("ignored flow: expected 0, got %s", got)
	}
}

func TestConfigTypeValidValue(t *testing.T) {
	if !models.ConfigTypeDecimal.ValidValue("0.045") {
		t.Fatalf("expected 0.045 to be a valid decimal")
	}
	if models.ConfigTypeDecimal.ValidValue("abc") {
		t.Fatalf("expected abc to be rejected")
	}
	if models.ConfigTypeDecimal.ValidValue("") {
		t.Fatalf("expected empty value to be rejected")
	}
}

func TestRateConfigRecognition(t *testing.T) {
	for _, accountType := range []models.AccountType{models.AccountTypeSavings, models.AccountTypeLoan} {
		if _, ok := accountType.ConfigNames()[models.ConfigNameRate]; !ok {
			t.Errorf("%s should recognize the rate config", accountType)
		}
	}
	for _, accountType := range []models.AccountType{models.AccountTypeChecking, models.AccountTypeExternal, models.AccountTypeAsset} {
		if len(accountType.ConfigNames()) != 0 {
			t.Errorf("%s should recognize no configs", accountType)
		}
	}
}
