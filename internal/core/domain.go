package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Credit TransactionType = "CREDIT"
	Debit  TransactionType = "DEBIT"
)

const (
	Travel    Category = "TRAVEL"
	Food      Category = "FOOD"
	Household Category = "HOUSEHOLD"
	Health    Category = "HEALTH"
	Income    Category = "INCOME"
	Anonymous Category = "ANONYMOUS"
)

const (
	AlertBudget80     AlertKind = "BUDGET_80_PERCENT"
	AlertBudget100    AlertKind = "BUDGET_100_PERCENT"
	AlertOverallLimit AlertKind = "OVERALL_BALANCE_LIMIT"
)

type (
	TransactionType string

	Category string

	AlertKind string

	User struct {
		ID                  int64
		Name                string
		Email               string
		Password            string // bcrypt hash, never serialized
		PhoneNo             string
		OverallBalanceLimit *decimal.Decimal // nil disables the overall check
		CreatedAt           time.Time
		UpdatedAt           time.Time
	}

	Bank struct {
		ID        int64
		BankName  string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Account is a registered bank account. Ownership is resolved by
	// matching the contact email against a user's email (soft join).
	Account struct {
		ID             int64
		AccountNumber  string
		IFSCCode       string
		PhoneNo        string
		Email          string
		BankID         int64
		AccountBalance decimal.Decimal
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	// Transaction is immutable once created. CREDIT increases the source
	// account's balance, DEBIT decreases it; the destination account,
	// when present, always receives the amount.
	Transaction struct {
		ID                      int64
		FromAccountID           int64
		ToAccountID             *int64
		Type                    TransactionType
		Amount                  decimal.Decimal
		Category                Category
		TransactionDate         time.Time
		BalanceAfterTransaction decimal.Decimal
		CreatedAt               time.Time
		UpdatedAt               time.Time
	}

	// Budget tracks a per-category monthly limit. CurrentSpent is a derived
	// value, fully recomputed by reconciliation from DEBIT transactions.
	Budget struct {
		ID           int64
		UserID       int64
		Category     Category
		MonthlyLimit decimal.Decimal
		CurrentSpent decimal.Decimal
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Alert struct {
		ID        int64
		UserID    int64
		BudgetID  *int64
		Kind      AlertKind
		Message   string
		IsRead    bool
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAlertKind       = errors.New("invalid alert kind")
	ErrEmptyName              = errors.New("empty name")
	ErrInvalidEmail           = errors.New("invalid email")
	ErrEmptyPhoneNo           = errors.New("empty phone number")
	ErrEmptyAccountNumber     = errors.New("empty account number")
	ErrInvalidLimit           = errors.New("invalid monthly limit")
)

// Categories returns every known category, in categorizer priority order
// followed by the fallback.
func Categories() []Category {
	return []Category{Food, Travel, Health, Household, Income, Anonymous}
}

// ParseCategory validates a category string (case-insensitive).
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case Travel, Food, Household, Health, Income, Anonymous:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// ParseTransactionType validates a transaction type string (case-insensitive).
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case Credit, Debit:
		return t, nil
	}
	return "", ErrInvalidTransactionType
}

// ParseAlertKind validates an alert kind string.
func ParseAlertKind(s string) (AlertKind, error) {
	k := AlertKind(strings.ToUpper(strings.TrimSpace(s)))
	switch k {
	case AlertBudget80, AlertBudget100, AlertOverallLimit:
		return k, nil
	}
	return "", ErrInvalidAlertKind
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Name)) == 0 {
		return ErrEmptyName
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if len(strings.TrimSpace(u.PhoneNo)) == 0 {
		return ErrEmptyPhoneNo
	}
	return nil
}

func (b Bank) Validate() error {
	if len(strings.TrimSpace(b.BankName)) == 0 {
		return ErrEmptyName
	}
	return nil
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.AccountNumber)) == 0 {
		return ErrEmptyAccountNumber
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

func (b Budget) Validate() error {
	if _, err := ParseCategory(string(b.Category)); err != nil {
		return err
	}
	if !b.MonthlyLimit.IsPositive() {
		return ErrInvalidLimit
	}
	return nil
}

// SpentPercentage returns how much of the monthly limit has been consumed,
// as a percentage. Zero for a non-positive limit.
func (b Budget) SpentPercentage() decimal.Decimal {
	if !b.MonthlyLimit.IsPositive() {
		return decimal.Zero
	}
	return b.CurrentSpent.Div(b.MonthlyLimit).Mul(decimal.NewFromInt(100))
}
