package schema

// InvoiceDraft is one invoice in progress, also persisted as the last used client data.
type InvoiceDraft struct {
	ClientName         string  `json:"clientName"`
	ClientAddressLine1 string  `json:"clientAddressLine1"`
	ClientAddressLine2 string  `json:"clientAddressLine2"`
	ClientEmail        string  `json:"clientEmail"`
	ServiceDescription string  `json:"serviceDescription"`
	HourlyRate         float64 `json:"hourlyRate"`
	HoursWorked        float64 `json:"hoursWorked"`
	FilenameTemplate   string  `json:"filenameTemplate"`
	Notes              string  `json:"notes"`
}

// Total is the amount billed for the draft.
func (d InvoiceDraft) Total() float64 {
	return d.HourlyRate * d.HoursWorked
}

const (
	msgClientName         = "Nome do cliente deve conter ao menos 3 caracteres"
	msgClientAddressLine1 = "Endereco do cliente deve conter ao menos 5 caracteres"
	msgClientEmail        = "Email invalido"
	msgServiceDescription = "Descricao do servico deve conter ao menos 3 caracteres"
	msgHourlyRate         = "Taxa horaria deve ser maior que zero"
	msgHoursWorked        = "Horas trabalhadas deve ser maior que zero"
	msgFilenameTemplate   = "Template do nome do arquivo e obrigatorio"
)

// ValidateInvoiceDraft checks every field of d. The empty string is the canonical "no email".
func ValidateInvoiceDraft(d InvoiceDraft) Result[InvoiceDraft] {
	errs := FieldErrors{}
	errs.check("clientName", d.ClientName, "min=3", msgClientName)
	errs.check("clientAddressLine1", d.ClientAddressLine1, "min=5", msgClientAddressLine1)
	errs.check("clientEmail", d.ClientEmail, "omitempty,email", msgClientEmail)
	errs.check("serviceDescription", d.ServiceDescription, "min=3", msgServiceDescription)
	errs.check("hourlyRate", d.HourlyRate, "gt=0", msgHourlyRate)
	errs.check("hoursWorked", d.HoursWorked, "gt=0", msgHoursWorked)
	errs.check("filenameTemplate", d.FilenameTemplate, "min=1", msgFilenameTemplate)
	return newResult(d, errs)
}
