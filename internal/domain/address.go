package domain

import "context"

// Address roles used by the funnel. Billing is the company address (one per
// Lead); Shop is one per declared business location.
const (
	AddressTypeBilling = "Billing"
	AddressTypeShop    = "Shop"
)

// Placeholder values written when the backend would otherwise reject a blank
// mandatory field. Deliberately lossy - the UI flags these to the user.
const (
	PlaceholderStreet = "Unknown Street"
	PlaceholderValue  = "Unknown"
)

// Link is one row of the generic (doctype, name) relation child table that
// connects Addresses and Contacts to their parents
type Link struct {
	Doctype string `json:"link_doctype"`
	Name    string `json:"link_name"`
}

// Address is a postal address entity linked to a Lead. Deduplicated by
// (title, type) pair before create.
type Address struct {
	Name       string `json:"name"`
	Title      string `json:"address_title"`
	Type       string `json:"address_type"`
	Line1      string `json:"address_line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"pincode"`
	Links      []Link `json:"links"`
}

// Contact is a person entity, optionally linked to both a Lead and a specific
// Address. Matched by email before create; link sets only ever grow.
type Contact struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email_id"`
	Phone     string `json:"mobile_no"`
	Links     []Link `json:"links"`
}

// MergeLinks returns the set union of two link lists, deduplicated by
// (doctype, name) pair. Existing links are never removed.
func MergeLinks(existing, incoming []Link) []Link {
	seen := make(map[Link]bool, len(existing))
	merged := make([]Link, 0, len(existing)+len(incoming))
	for _, l := range existing {
		if !seen[l] {
			seen[l] = true
			merged = append(merged, l)
		}
	}
	for _, l := range incoming {
		if !seen[l] {
			seen[l] = true
			merged = append(merged, l)
		}
	}
	return merged
}

type AddressRepository interface {
	// FindByTitleAndType returns the first Address matching the pair, or nil
	FindByTitleAndType(ctx context.Context, title, addrType string) (*Address, error)
	// Create inserts an Address with its link set embedded in the same call
	Create(ctx context.Context, addr *Address) (*Address, error)
	Update(ctx context.Context, name string, fields map[string]interface{}) (*Address, error)
}

type ContactRepository interface {
	// FindByEmail returns the Contact for an email, or nil when none exists
	FindByEmail(ctx context.Context, email string) (*Contact, error)
	Create(ctx context.Context, contact *Contact) (*Contact, error)
	Update(ctx context.Context, name string, fields map[string]interface{}) (*Contact, error)
}

// AddressReconciler finds-or-creates Address and Contact records for a Lead
// without ever aborting sibling writes. Every outcome is reported, not thrown.
type AddressReconciler interface {
	ReconcileBilling(ctx context.Context, lead *Lead, info *CompanyInfo) SectionStatus
	ReconcileBusinesses(ctx context.Context, lead *Lead, businesses []BusinessLocation) map[int]BusinessStatus
}
