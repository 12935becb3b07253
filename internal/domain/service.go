package domain

import "context"

// CatalogService is one entry of the external Service catalog
type CatalogService struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ServiceRepository interface {
	// ResolveNames maps service ids to display names in a single filtered
	// query. Ids missing from the catalog are absent from the result map.
	ResolveNames(ctx context.Context, ids []string) (map[string]string, error)
	// List returns the full service catalog for the wizard
	List(ctx context.Context) ([]CatalogService, error)
}

// ServiceWriter converts a selected-service id list into the Lead's child
// table plus denormalized display-name fields
type ServiceWriter interface {
	// SetServices replaces the Lead's whole service selection. An empty list
	// is an intentional deselect-all and clears the collection.
	SetServices(ctx context.Context, lead *Lead, serviceIDs []string) (*Lead, error)
	ListCatalog(ctx context.Context) ([]CatalogService, error)
}
