package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Receipt holds the fields rendered on a booking receipt.
type Receipt struct {
	BookingID   string
	ShopName    string
	Service     string
	Status      string
	StartsAt    string
	EndsAt      string
	TotalPrice  string
	CustomerRef string
}

// ReceiptExporter renders booking receipts as PDF documents.
type ReceiptExporter struct{}

// NewReceiptExporter constructs a receipt exporter.
func NewReceiptExporter() *ReceiptExporter {
	return &ReceiptExporter{}
}

// Render creates a single-page PDF receipt for a booking.
func (e *ReceiptExporter) Render(r Receipt) ([]byte, error) {
	if r.BookingID == "" {
		return nil, fmt.Errorf("receipt requires a booking id")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "BOOKING RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	rows := [][2]string{
		{"Booking ID", r.BookingID},
		{"Shop", r.ShopName},
		{"Service", r.Service},
		{"Status", r.Status},
		{"Starts at", r.StartsAt},
		{"Ends at", r.EndsAt},
		{"Total price", r.TotalPrice},
		{"Customer", r.CustomerRef},
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(140, 8, row[1], "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
