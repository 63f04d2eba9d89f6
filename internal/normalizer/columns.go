package normalizer

// Table names.
const (
	TableProfileNatures  = "profile_natures"
	TableLimits          = "limits"
	TableAccounts        = "accounts"
	TableNatures         = "natures"
	TableInconsistencies = "inconsistencies"
)

// Column names shared by the normalized tables and the views.
const (
	ColProfileID    = "Profile ID"
	ColProfile      = "Profile"
	ColNatureID     = "Nature ID"
	ColNature       = "Nature"
	ColStatus       = "Status"
	ColLimit        = "Limit"
	ColAllowance    = "Allowance"
	ColCurrency     = "Currency"
	ColPeriod       = "Period"
	ColBlocking     = "Blocking"
	ColAudit        = "Audit"
	ColKind         = "Kind"
	ColType         = "Type"
	ColAmount       = "Amount"
	ColChart        = "Chart"
	ColAccountCode  = "Account Code"
	ColAccountLabel = "Account Label"
	ColVATIDs       = "VAT IDs"
	ColSource       = "Source"
	ColReference    = "Reference"
	ColMessage      = "Message"
)

var (
	profileNatureColumns = []string{
		ColProfileID, ColProfile, ColNatureID, ColNature, ColStatus,
		ColLimit, ColAllowance, ColCurrency, ColPeriod, ColBlocking, ColAudit,
	}
	limitColumns = []string{
		ColProfile, ColKind, ColType, ColBlocking, ColAmount, ColCurrency,
		ColPeriod, ColNatureID, ColNature, ColAudit,
	}
	accountColumns = []string{
		ColChart, ColAccountCode, ColAccountLabel, ColNatureID, ColNature, ColVATIDs, ColAudit,
	}
	natureColumns        = []string{ColNatureID, ColNature, ColStatus}
	inconsistencyColumns = []string{ColKind, ColSource, ColReference, ColMessage}
)
