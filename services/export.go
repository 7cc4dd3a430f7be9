package services

import (
	"bytes"
	"context"
	"fmt"

	"academy_go/models"

	"github.com/xuri/excelize/v2"
)

const registrationSheet = "Registrations"

var registrationColumns = []string{
	"ID", "Submitted At", "Student First Name", "Student Last Name", "Grade",
	"Parent Name", "Parent Email", "Parent Phone", "Group", "Status",
}

// Export renders registrations, optionally filtered by status, as an xlsx workbook.
func (s *RegistrationService) Export(ctx context.Context, status string) (*bytes.Buffer, error) {
	regs, err := s.List(ctx, status)
	if err != nil {
		return nil, err
	}
	buf, err := RegistrationsWorkbook(regs)
	if err != nil {
		return nil, upstream("render workbook", err)
	}
	return buf, nil
}

// RegistrationsWorkbook writes one header row and one row per registration.
func RegistrationsWorkbook(regs []models.Registration) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registrationSheet); err != nil {
		return nil, err
	}
	for i, title := range registrationColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(registrationSheet, cell, title); err != nil {
			return nil, err
		}
	}

	for r, reg := range regs {
		row := []interface{}{
			reg.ID,
			reg.CreatedAt.Format("2006-01-02 15:04"),
			reg.StudentFirstName,
			reg.StudentLastName,
			reg.StudentGrade,
			reg.ParentName,
			reg.ParentEmail,
			reg.ParentPhone,
			reg.GroupID,
			reg.Status,
		}
		cell := fmt.Sprintf("A%d", r+2)
		if err := f.SetSheetRow(registrationSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
