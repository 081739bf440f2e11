package settings

// Keys of the persisted settings container.
const (
	// BankDataKey holds the beneficiary bank profile.
	BankDataKey = "bankData"
	// AddressSettingsKey holds the beneficiary mailing address.
	AddressSettingsKey = "addressSettings"
	// SystemSettingsKey holds display preferences.
	SystemSettingsKey = "systemSettings"
	// InvoiceSequenceKey holds the invoice counter.
	InvoiceSequenceKey = "invoiceSequence"
	// LastClientDataKey holds the most recently saved invoice draft.
	LastClientDataKey = "lastClientData"
)

// DefaultInvoiceSequence is the counter value used when none was ever persisted.
const DefaultInvoiceSequence int64 = 0
