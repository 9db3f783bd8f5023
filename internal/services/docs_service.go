package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders passenger documents for paid bookings.
type DocsService struct {
	Bookings BookingStore
	Trips    TripStore
	Payments PaymentStore
}

type ticketData struct {
	Booking models.Booking
	Trip    models.Trip
	Payment models.Payment
}

// ETicket returns the PDF bytes and a download filename.
func (s DocsService) ETicket(ctx context.Context, actor domain.Actor, bookingID int64) ([]byte, string, error) {
	b, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, "", storeErr("Booking", err)
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, "", domain.ForbiddenError{}
	}
	if b.Status != models.BookingPaid {
		return nil, "", domain.InvalidStateError{Resource: "booking", From: string(b.Status), Action: "issue e-ticket for"}
	}
	t, err := s.Trips.GetTrip(ctx, b.TripID)
	if err != nil {
		return nil, "", storeErr("Trip", err)
	}
	p, err := s.Payments.GetPaymentByBooking(ctx, b.ID)
	if err != nil {
		return nil, "", storeErr("Payment", err)
	}

	out, name, err := buildETicketPDF(ticketData{Booking: b, Trip: t, Payment: p})
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render e-ticket", Err: err}
	}
	utils.LogEventCtx(ctx, "docs", "eticket", fmt.Sprintf("booking_id=%d bytes=%d", b.ID, len(out)))
	return out, name, nil
}

func buildETicketPDF(d ticketData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	b, t := d.Booking, d.Trip
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger      : %s", safe(b.PassengerName, "-")),
		fmt.Sprintf("Mobile         : %s", safe(b.MobileNumber, "-")),
		fmt.Sprintf("Route          : %s", safe(t.RouteNumber, "-")),
		fmt.Sprintf("Bus            : %s", safe(b.BusNumber, "-")),
		fmt.Sprintf("Seat           : %d", b.SeatNumber),
		fmt.Sprintf("From / To      : %s -> %s", safe(b.BoardingPlace, "-"), safe(b.DestinationPlace, "-")),
		fmt.Sprintf("Departure      : %s", t.DepartureTime.Format("2006-01-02 15:04")),
		fmt.Sprintf("Arrival        : %s", t.ArrivalTime.Format("2006-01-02 15:04")),
		fmt.Sprintf("Booking        : #%d", b.ID),
		fmt.Sprintf("Ticket         : TCK-%d-%d", b.ID, b.SeatNumber),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payment")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, s := range []string{
		fmt.Sprintf("Amount         : %s", utils.FormatMoney(d.Payment.Amount)),
		fmt.Sprintf("Method         : %s", safe(d.Payment.PaymentMethod, "-")),
		fmt.Sprintf("Card           : %s", safe(d.Payment.CardDetails.CardNumber, "-")),
		fmt.Sprintf("Transaction    : %s", safe(d.Payment.TransactionID, "-")),
	} {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This e-ticket is valid for one passenger and one seat. Please show it when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", b.ID, safeFilenamePart(fmt.Sprintf("%s_%d", b.PassengerName, b.SeatNumber)))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
