package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/phpdave11/gofpdf"

	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

// DocsService renders the booking slip handed to the passenger after booking.
type DocsService struct {
	Booking   BookingService
	RequestID string
	Loader    func(ctx context.Context, id string) (models.BookedTicket, error)
	Now       func() time.Time
}

func (s DocsService) GenerateSlip(ctx context.Context, bookedID string) ([]byte, string, error) {
	b, err := s.load(ctx, bookedID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_slip", "booked_id="+b.ID)
	return buildSlipPDF(b, s.now())
}

func (s DocsService) load(ctx context.Context, id string) (models.BookedTicket, error) {
	if s.Loader != nil {
		return s.Loader(ctx, id)
	}
	return s.Booking.GetBooked(ctx, id)
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func buildSlipPDF(b models.BookedTicket, printedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Booking Slip "+b.PNR, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING SLIP")
	pdf.Ln(12)

	if qr, err := utils.GenerateQRCode(b.PNR, 256); err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("pnr-qr", opts, bytes.NewReader(qr))
		pdf.ImageOptions("pnr-qr", 100, 12, 32, 32, false, opts, 0, "")
	}

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("PNR          : %s", safe(b.PNR, "-")),
		fmt.Sprintf("Passenger    : %s", safe(b.Name, "-")),
		fmt.Sprintf("Mobile       : %s", safe(b.Mobile, "-")),
		fmt.Sprintf("Route        : %s -> %s", safe(b.From, "-"), safe(b.To, "-")),
		fmt.Sprintf("Train        : %s", safe(b.TrainNumber, "-")),
		fmt.Sprintf("Class        : %s", safe(b.Class, "-")),
		fmt.Sprintf("Journey Date : %s", safe(b.JourneyDate, "-")),
		fmt.Sprintf("Booked On    : %s", utils.FormatDate(b.BookedDate)),
		fmt.Sprintf("Booked By    : %s", safe(b.Staff, "-")),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	if r := strings.TrimSpace(b.Remark); r != "" {
		pdf.Ln(2)
		pdf.MultiCell(0, 6, "Remark: "+r, "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Printed "+printedAt.Format("2006-01-02 15:04")+". Carry a valid photo ID while travelling.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), slipFilename(b), nil
}

func slipFilename(b models.BookedTicket) string {
	name := slug.Make(b.Name)
	if name == "" {
		name = "passenger"
	}
	pnr := slug.Make(b.PNR)
	if pnr == "" {
		pnr = "na"
	}
	return fmt.Sprintf("slip-%s-%s.pdf", pnr, name)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
