package usecase

import (
	"context"
	"fmt"
	"strings"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/internal/repository/crm"
	"go-restaurant-onboarding/pkg/logger"
)

type addressReconciler struct {
	addressRepo domain.AddressRepository
	contactRepo domain.ContactRepository
}

func NewAddressReconciler(addressRepo domain.AddressRepository, contactRepo domain.ContactRepository) domain.AddressReconciler {
	return &addressReconciler{
		addressRepo: addressRepo,
		contactRepo: contactRepo,
	}
}

// ReconcileBilling finds-or-creates the company's Billing address. Failures
// are reported, never thrown - a broken address write must not block the step.
func (r *addressReconciler) ReconcileBilling(ctx context.Context, lead *domain.Lead, info *domain.CompanyInfo) domain.SectionStatus {
	title := strings.TrimSpace(info.CompanyName)
	if title == "" {
		title = strings.TrimSpace(lead.CompanyName)
	}
	if title == "" {
		title = "Billing"
	}

	addr := &domain.Address{
		Title:      title,
		Type:       domain.AddressTypeBilling,
		Line1:      addressLine(info.Street, info.City, info.PostalCode, info.Country),
		City:       valueOrPlaceholder(info.City),
		State:      strings.TrimSpace(info.State),
		Country:    NormalizeCountry(info.Country),
		PostalCode: strings.TrimSpace(info.PostalCode),
		Links:      []domain.Link{{Doctype: crm.DoctypeLead, Name: lead.Name}},
	}

	name, err := r.upsertAddress(ctx, addr)
	if err != nil {
		logger.Log.Error("Billing address reconciliation failed", "lead", lead.Name, "error", err)
		return domain.SectionStatus{OK: false, Error: "Failed to save billing address"}
	}
	return domain.SectionStatus{OK: true, ID: name}
}

// ReconcileBusinesses processes every declared business location
// independently; one bad entry never aborts its siblings
func (r *addressReconciler) ReconcileBusinesses(ctx context.Context, lead *domain.Lead, businesses []domain.BusinessLocation) map[int]domain.BusinessStatus {
	statuses := make(map[int]domain.BusinessStatus, len(businesses))

	for i, biz := range businesses {
		status := domain.BusinessStatus{}

		title := strings.TrimSpace(biz.Name)
		if title == "" {
			title = fmt.Sprintf("Business %d", i+1)
		}

		addr := &domain.Address{
			Title:      title,
			Type:       domain.AddressTypeShop,
			Line1:      addressLine(biz.Street, biz.City, biz.PostalCode, biz.Country),
			City:       valueOrPlaceholder(biz.City),
			State:      strings.TrimSpace(biz.State),
			Country:    NormalizeCountry(biz.Country),
			PostalCode: strings.TrimSpace(biz.PostalCode),
			Links:      []domain.Link{{Doctype: crm.DoctypeLead, Name: lead.Name}},
		}

		addrName, err := r.upsertAddress(ctx, addr)
		if err != nil {
			logger.Log.Error("Shop address reconciliation failed",
				"lead", lead.Name, "business", title, "error", err)
			status.Address = domain.SectionStatus{OK: false, Error: "Failed to save business address"}
			statuses[i] = status
			continue
		}
		status.Address = domain.SectionStatus{OK: true, ID: addrName}

		if contactStatus := r.reconcileContact(ctx, lead, &biz, addrName); contactStatus != nil {
			status.Contact = contactStatus
		}

		statuses[i] = status
	}

	return statuses
}

// upsertAddress matches by (title, type) and updates in place, re-asserting
// the full link set; otherwise creates with the links embedded inline
func (r *addressReconciler) upsertAddress(ctx context.Context, addr *domain.Address) (string, error) {
	existing, err := r.addressRepo.FindByTitleAndType(ctx, addr.Title, addr.Type)
	if err != nil {
		return "", err
	}

	if existing == nil {
		created, err := r.addressRepo.Create(ctx, addr)
		if err != nil {
			return "", err
		}
		return created.Name, nil
	}

	fields := map[string]interface{}{
		"address_line1": addr.Line1,
		"city":          addr.City,
		"state":         addr.State,
		"country":       addr.Country,
		"pincode":       addr.PostalCode,
		"links":         domain.MergeLinks(existing.Links, addr.Links),
	}
	updated, err := r.addressRepo.Update(ctx, existing.Name, fields)
	if err != nil {
		return "", err
	}
	return updated.Name, nil
}

// reconcileContact determines the contact identity for a business location
// and finds-or-creates the Contact. Returns nil when the business declares
// no usable contact person.
func (r *addressReconciler) reconcileContact(ctx context.Context, lead *domain.Lead, biz *domain.BusinessLocation, addressName string) *domain.SectionStatus {
	// Prefer the distinct contact person when flagged, otherwise fall back
	// to the owner/director fields
	firstName, lastName, email, phone := biz.OwnerFirstName, biz.OwnerLastName, biz.OwnerEmail, biz.OwnerPhone
	if biz.HasDifferentContact {
		firstName, lastName, email, phone = biz.ContactFirstName, biz.ContactLastName, biz.ContactEmail, biz.ContactPhone
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}

	links := []domain.Link{
		{Doctype: crm.DoctypeLead, Name: lead.Name},
		{Doctype: crm.DoctypeAddress, Name: addressName},
	}

	existing, err := r.contactRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Contact lookup failed", "email", email, "error", err)
		return &domain.SectionStatus{OK: false, Error: "Failed to look up contact"}
	}

	if existing == nil {
		contact := &domain.Contact{
			FirstName: valueOrPlaceholder(firstName),
			LastName:  strings.TrimSpace(lastName),
			Email:     email,
			Phone:     strings.TrimSpace(phone),
			Links:     links,
		}
		created, err := r.contactRepo.Create(ctx, contact)
		if err != nil {
			logger.Log.Error("Contact create failed", "email", email, "error", err)
			return &domain.SectionStatus{OK: false, Error: "Failed to create contact"}
		}
		return &domain.SectionStatus{OK: true, ID: created.Name}
	}

	// Existing contacts keep every link they already have; the new links are
	// unioned in, never replacing prior relations
	fields := map[string]interface{}{
		"links": domain.MergeLinks(existing.Links, links),
	}
	if strings.TrimSpace(phone) != "" {
		fields["mobile_no"] = strings.TrimSpace(phone)
	}
	updated, err := r.contactRepo.Update(ctx, existing.Name, fields)
	if err != nil {
		logger.Log.Error("Contact update failed", "contact", existing.Name, "error", err)
		return &domain.SectionStatus{OK: false, Error: "Failed to update contact"}
	}
	return &domain.SectionStatus{OK: true, ID: updated.Name}
}

// addressLine returns the primary address line, synthesizing one from the
// remaining fragments when the street is missing. The backend rejects blank
// mandatory fields, so the last resort is a literal placeholder.
func addressLine(street, city, postalCode, country string) string {
	if s := strings.TrimSpace(street); s != "" {
		return s
	}
	if joined := joinAddressFragments(city, postalCode, NormalizeCountry(country)); joined != "" {
		return joined
	}
	return domain.PlaceholderStreet
}

func valueOrPlaceholder(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return domain.PlaceholderValue
}
