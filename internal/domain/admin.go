package domain

import "context"

// LeadExport is a generated spreadsheet of leads for back-office use
type LeadExport struct {
	Filename string
	Content  []byte
}

type AdminUsecase interface {
	// ExportLeads renders up to limit leads into an XLSX workbook
	ExportLeads(ctx context.Context, limit int) (*LeadExport, error)
}
