package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type amountInput struct {
	Amount decimal.Decimal `binding:"required,gt=0"`
	Type   string          `binding:"required,transaction_type"`
	Color  string          `binding:"omitempty,hex_color"`
}

func engine(t *testing.T) *validator.Validate {
	t.Helper()
	Register()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatal("gin validator engine is not go-playground/validator")
	}
	return v
}

func TestRegister_DecimalAndEnums(t *testing.T) {
	v := engine(t)

	tests := []struct {
		name    string
		input   amountInput
		wantErr bool
	}{
		{"valid_expense", amountInput{Amount: decimal.RequireFromString("12.50"), Type: "EXPENSE"}, false},
		{"valid_income_with_color", amountInput{Amount: decimal.NewFromInt(1), Type: "INCOME", Color: "#fff"}, false},
		{"zero_amount", amountInput{Amount: decimal.Zero, Type: "EXPENSE"}, true},
		{"negative_amount", amountInput{Amount: decimal.NewFromInt(-5), Type: "EXPENSE"}, true},
		{"lowercase_type", amountInput{Amount: decimal.NewFromInt(5), Type: "expense"}, true},
		{"unknown_type", amountInput{Amount: decimal.NewFromInt(5), Type: "TRANSFER"}, true},
		{"bad_color", amountInput{Amount: decimal.NewFromInt(5), Type: "INCOME", Color: "red"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegister_AccountAndCategoryTypes(t *testing.T) {
	v := engine(t)

	for _, at := range []string{"cash", "bank", "savings", "credit_card", "investment"} {
		if err := v.Var(at, "account_type"); err != nil {
			t.Errorf("account type %q should be valid: %v", at, err)
		}
	}
	if err := v.Var("debt", "account_type"); err == nil {
		t.Error("account type debt should be rejected")
	}
	if err := v.Var("INCOME", "category_type"); err != nil {
		t.Errorf("category type INCOME should be valid: %v", err)
	}
	if err := v.Var("yearly", "budget_period"); err != nil {
		t.Errorf("budget period yearly should be valid: %v", err)
	}
	if err := v.Var("weekly", "budget_period"); err == nil {
		t.Error("budget period weekly should be rejected")
	}
}
