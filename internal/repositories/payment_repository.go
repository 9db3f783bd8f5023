package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intdb "busbooking/internal/db"
	"busbooking/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

type PaymentRepository struct {
	DB *sql.DB
}

const mysqlDuplicateEntry = 1062

// RecordPayment flips the booking Confirmed -> Paid with token and inserts the
// payment in one transaction. It reports false, writing nothing, when the
// booking was no longer Confirmed.
func (r PaymentRepository) RecordPayment(ctx context.Context, p *models.Payment, bookingToken string) (bool, error) {
	moved := false
	err := intdb.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		ok, err := transitionBooking(ctx, tx, p.BookingID,
			[]models.BookingStatus{models.BookingConfirmed}, models.BookingPaid, bookingToken, p.PaymentDate)
		if err != nil {
			return fmt.Errorf("mark booking paid: %w", err)
		}
		if !ok {
			return nil
		}
		masked := p.CardDetails.Masked()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO payments (booking_id, amount, payment_method, name_on_card, card_number, expiry_date, status, transaction_id, payment_date)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			p.BookingID, p.Amount, p.PaymentMethod, masked.NameOnCard, masked.CardNumber, masked.ExpiryDate,
			string(p.Status), p.TransactionID, p.PaymentDate,
		)
		if err != nil {
			var myErr *mysql.MySQLError
			if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
				return ErrDuplicate
			}
			return fmt.Errorf("insert payment: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("payment id: %w", err)
		}
		p.ID = id
		p.CardDetails = masked
		moved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

func (r PaymentRepository) GetPaymentByBooking(ctx context.Context, bookingID int64) (models.Payment, error) {
	var (
		p      models.Payment
		status string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, booking_id, amount, payment_method, name_on_card, card_number, expiry_date, status, transaction_id, payment_date
		FROM payments WHERE booking_id=? LIMIT 1`, bookingID).Scan(
		&p.ID, &p.BookingID, &p.Amount, &p.PaymentMethod,
		&p.CardDetails.NameOnCard, &p.CardDetails.CardNumber, &p.CardDetails.ExpiryDate,
		&status, &p.TransactionID, &p.PaymentDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, ErrNotFound
	}
	if err != nil {
		return models.Payment{}, err
	}
	p.Status = models.PaymentStatus(status)
	return p, nil
}
