package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/laundry-service/internal/apperr"
	"github.com/laundry-service/internal/model"
	"github.com/laundry-service/internal/repo"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	exportLimit = 10000
	exportDate  = "2006-01-02 15:04"
	sheetName   = "Orders"
)

var exportHeaders = []string{
	"Order Number", "Created", "Customer", "Phone", "Type", "Status",
	"Subtotal", "Discount", "Tax", "Total", "Paid", "Balance", "Payment",
}

type ExportService struct {
	orders repo.OrderRepository
}

func NewExportService(orders repo.OrderRepository) *ExportService {
	return &ExportService{orders: orders}
}

func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func exportRow(o model.Order) []string {
	name, phone := "", ""
	if o.Customer != nil {
		name, phone = o.Customer.Name, o.Customer.Phone
	}
	return []string{
		o.OrderNumber,
		o.CreatedAt.Format(exportDate),
		name,
		phone,
		string(o.OrderType),
		string(o.Status),
		o.Subtotal.StringFixed(2),
		o.Discount.StringFixed(2),
		o.Tax.StringFixed(2),
		o.TotalAmount.StringFixed(2),
		o.PaidAmount.StringFixed(2),
		o.Balance().StringFixed(2),
		string(o.PaymentStatus()),
	}
}

// Export writes every order matching the filter in the requested format.
func (s *ExportService) Export(ctx context.Context, w io.Writer, filter repo.OrderFilter, format string) error {
	if format != FormatCSV && format != FormatXLSX {
		return apperr.Invalid("format", "must be one of csv xlsx")
	}
	filter.Limit = exportLimit
	filter.Offset = 0
	orders, _, err := s.orders.List(ctx, filter)
	if err != nil {
		return err
	}
	if format == FormatXLSX {
		return writeXLSX(w, orders)
	}
	return writeCSV(w, orders)
}

func writeCSV(w io.Writer, orders []model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return err
	}
	for _, o := range orders {
		if err := cw.Write(exportRow(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, orders []model.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return err
	}

	for i, o := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		src := exportRow(o)
		row := make([]any, len(src))
		for j, v := range src {
			row[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(sheetName, "A", "A", 20)
	_ = f.SetColWidth(sheetName, "C", "C", 25)
	return f.Write(w)
}
