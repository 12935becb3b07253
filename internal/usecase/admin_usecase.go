package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName    = "Leads"
	exportDefaultLimit = 500
	exportMaxLimit     = 5000
)

type adminUsecase struct {
	leadRepo domain.LeadRepository
	now      func() time.Time
}

func NewAdminUsecase(leadRepo domain.LeadRepository) domain.AdminUsecase {
	return &adminUsecase{
		leadRepo: leadRepo,
		now:      time.Now,
	}
}

// ExportLeads renders the lead list into an XLSX workbook for back-office
// reporting. Signing tokens and bank details are deliberately left out.
func (u *adminUsecase) ExportLeads(ctx context.Context, limit int) (*domain.LeadExport, error) {
	if limit <= 0 {
		limit = exportDefaultLimit
	}
	if limit > exportMaxLimit {
		limit = exportMaxLimit
	}

	leads, err := u.leadRepo.List(ctx, limit)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list leads for export: %w", err))
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("create export sheet: %w", err))
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Lead", "Email", "Company", "Contact Name", "Status",
		"Registration Status", "City", "Country", "Services",
		"Documents", "Signed At",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(exportSheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(exportSheetName, "A1", endCell, headerStyle)
	}

	for i, lead := range leads {
		row := i + 2
		values := []interface{}{
			lead.Name, lead.Email, lead.CompanyName, lead.LeadName, lead.Status,
			lead.RegistrationStatus, lead.City, lead.Country, lead.ServiceNames,
			lead.DocumentProgress, lead.SignedAt,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheetName, cell, value)
		}
	}

	f.SetColWidth(exportSheetName, "A", "B", 28)
	f.SetColWidth(exportSheetName, "C", "F", 22)
	f.SetColWidth(exportSheetName, "G", "K", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Internal(fmt.Errorf("write export workbook: %w", err))
	}

	return &domain.LeadExport{
		Filename: fmt.Sprintf("leads-export-%s.xlsx", u.now().Format("2006-01-02")),
		Content:  buf.Bytes(),
	}, nil
}
