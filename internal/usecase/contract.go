package usecase

import (
	"strings"
	"time"

	"go-restaurant-onboarding/internal/domain"
)

// contractDateFormat is the fixed locale format printed on the agreement
const contractDateFormat = "02.01.2006"

// serviceAgreementTemplate is the fixed legal document presented for
// signature. Placeholders are substituted from Lead fields; missing fields
// degrade to the bracketed literals rather than failing.
const serviceAgreementTemplate = `SERVICE AGREEMENT

Between

{company}
{street}
{postal_code} {city}
{country}

(hereinafter the "Partner"), represented by {owner},

and the platform operator (hereinafter the "Operator").

1. Subject of the Agreement
The Operator provides the Partner with access to the ordering and delivery
platform, including the services selected during registration: {services}.

2. Commencement
This agreement takes effect on the date of signature and runs for an
indefinite period.

3. Remuneration
Fees for the selected services are charged per the current price schedule
communicated to the Partner during registration. Settlement is made against
the bank account on record (account holder: {account_holder}).

4. Electronic Signature
Both parties agree that this contract is concluded by qualified electronic
signature and that the electronically captured signature has the same legal
effect as a handwritten one.

Place, date: {date}

Signed for the Partner:
{owner}
{company}`

// RenderContract fills the service-agreement template from Lead fields.
// Pure - no I/O, no backend calls.
func RenderContract(lead *domain.Lead, now time.Time) string {
	replacer := strings.NewReplacer(
		"{company}", orPlaceholder(lead.CompanyName, "[Company]"),
		"{street}", orPlaceholder(lead.Street, "[Street]"),
		"{postal_code}", orPlaceholder(lead.PostalCode, "[Postal Code]"),
		"{city}", orPlaceholder(lead.City, "[City]"),
		"{country}", orPlaceholder(lead.Country, "[Country]"),
		"{owner}", orPlaceholder(lead.LeadName, "[Name]"),
		"{services}", orPlaceholder(lead.ServiceNames, "[Selected Services]"),
		"{account_holder}", orPlaceholder(lead.AccountHolder, "[Account Holder]"),
		"{date}", now.Format(contractDateFormat),
	)
	return replacer.Replace(serviceAgreementTemplate)
}

func orPlaceholder(value, placeholder string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return placeholder
}
