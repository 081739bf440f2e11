package schema

// AddressProfile is the beneficiary's mailing address.
type AddressProfile struct {
	BeneficiaryAddressLine1 string `json:"beneficiaryAddressLine1"`
	BeneficiaryAddressLine2 string `json:"beneficiaryAddressLine2"`
	BeneficiaryAddressState string `json:"beneficiaryAddressState"`
	BeneficiaryAddressCity  string `json:"beneficiaryAddressCity"`
	BeneficiaryAddressZip   string `json:"beneficiaryAddressZip"`
}

var brazilianStates = []Option{
	{Name: "Acre", Value: "AC"},
	{Name: "Alagoas", Value: "AL"},
	{Name: "Amapá", Value: "AP"},
	{Name: "Amazonas", Value: "AM"},
	{Name: "Bahia", Value: "BA"},
	{Name: "Ceará", Value: "CE"},
	{Name: "Distrito Federal", Value: "DF"},
	{Name: "Espírito Santo", Value: "ES"},
	{Name: "Goiás", Value: "GO"},
	{Name: "Maranhão", Value: "MA"},
	{Name: "Mato Grosso", Value: "MT"},
	{Name: "Mato Grosso do Sul", Value: "MS"},
	{Name: "Minas Gerais", Value: "MG"},
	{Name: "Pará", Value: "PA"},
	{Name: "Paraíba", Value: "PB"},
	{Name: "Paraná", Value: "PR"},
	{Name: "Pernambuco", Value: "PE"},
	{Name: "Piauí", Value: "PI"},
	{Name: "Rio de Janeiro", Value: "RJ"},
	{Name: "Rio Grande do Norte", Value: "RN"},
	{Name: "Rio Grande do Sul", Value: "RS"},
	{Name: "Rondônia", Value: "RO"},
	{Name: "Roraima", Value: "RR"},
	{Name: "Santa Catarina", Value: "SC"},
	{Name: "São Paulo", Value: "SP"},
	{Name: "Sergipe", Value: "SE"},
	{Name: "Tocantins", Value: "TO"},
}

// BrazilianStates returns the 27 federative units offered by the address form.
func BrazilianStates() []Option {
	return append([]Option(nil), brazilianStates...)
}

var stateTag = "oneof=" + optionValues(brazilianStates)

const (
	msgAddressLine1 = "Endereco do beneficiario deve contar ao menos 5 caracteres"
	msgAddressState = "Selecione um estado"
	msgAddressCity  = "Selecione uma cidade"
	msgAddressZip   = "Digite um CEP"
)

// ValidateAddressProfile checks every field of a.
func ValidateAddressProfile(a AddressProfile) Result[AddressProfile] {
	errs := FieldErrors{}
	errs.check("beneficiaryAddressLine1", a.BeneficiaryAddressLine1, "min=5", msgAddressLine1)
	errs.check("beneficiaryAddressState", a.BeneficiaryAddressState, "required,"+stateTag, msgAddressState)
	errs.check("beneficiaryAddressCity", a.BeneficiaryAddressCity, "min=1", msgAddressCity)
	errs.check("beneficiaryAddressZip", a.BeneficiaryAddressZip, "min=1", msgAddressZip)
	return newResult(a, errs)
}
