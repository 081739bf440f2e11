package schema

import "strings"

// BankProfile holds the beneficiary's banking details.
type BankProfile struct {
	BeneficiaryAccountName string `json:"beneficiaryAccountName"`
	BankName               string `json:"bankName"`
	BankAddress            string `json:"bankAddress"`
	AccountType            string `json:"accountType"`
	AccountNumber          string `json:"accountNumber"`
	WireRouting            string `json:"wireRouting"`
	SwiftCode              string `json:"swiftCode"`
}

// Account types offered by the bank profile form.
const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
)

// Option is a selectable value with its display label.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var accountTypes = []Option{
	{Name: "Checking", Value: AccountTypeChecking},
	{Name: "Savings", Value: AccountTypeSavings},
}

// AccountTypes returns the closed set of account types.
func AccountTypes() []Option {
	return append([]Option(nil), accountTypes...)
}

var accountTypeTag = "oneof=" + optionValues(accountTypes)

const (
	msgBeneficiaryAccountName = "Nome do beneficiario deve contar ao menos 5 caracteres"
	msgBankName               = "Nome do banco deve contar ao menos 5 caracteres"
	msgBankAddress            = "Endereco do banco deve contar ao menos 5 caracteres"
	msgAccountType            = "Selecione um tipo de conta"
	msgAccountNumber          = "Numero da conta deve contar ao menos 5 caracteres"
	msgWireRouting            = "Wire Routing deve contar ao menos 5 caracteres"
	msgSwiftCode              = "Codigo swift deve contar ao menos 5 caracteres"
)

// ValidateBankProfile checks every field of p.
func ValidateBankProfile(p BankProfile) Result[BankProfile] {
	errs := FieldErrors{}
	errs.check("beneficiaryAccountName", p.BeneficiaryAccountName, "min=5", msgBeneficiaryAccountName)
	errs.check("bankName", p.BankName, "min=5", msgBankName)
	errs.check("bankAddress", p.BankAddress, "min=5", msgBankAddress)
	errs.check("accountType", p.AccountType, "required,"+accountTypeTag, msgAccountType)
	errs.check("accountNumber", p.AccountNumber, "min=5", msgAccountNumber)
	errs.check("wireRouting", p.WireRouting, "min=5", msgWireRouting)
	errs.check("swiftCode", p.SwiftCode, "min=5", msgSwiftCode)
	return newResult(p, errs)
}

func optionValues(opts []Option) string {
	values := make([]string, 0, len(opts))
	for _, opt := range opts {
		values = append(values, opt.Value)
	}
	return strings.Join(values, " ")
}
