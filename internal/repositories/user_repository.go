package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users (email, password_hash, role) VALUES (?,?,?)`,
		u.Email, u.PasswordHash, string(u.Role))
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	return nil
}

func (r UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var (
		u    models.User
		role string
	)
	err := r.DB.QueryRowContext(ctx, `SELECT id, email, password_hash, role FROM users WHERE email=? LIMIT 1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

// SaveBus inserts the bus or moves an existing one to b.OperatorID. An empty
// name keeps the stored one.
func (r UserRepository) SaveBus(ctx context.Context, b models.Bus) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO buses (bus_number, bus_name, operator_id) VALUES (?,?,?)
		ON DUPLICATE KEY UPDATE operator_id=VALUES(operator_id),
			bus_name=IF(VALUES(bus_name)='', bus_name, VALUES(bus_name))`,
		b.BusNumber, b.BusName, b.OperatorID,
	)
	if err != nil {
		return fmt.Errorf("save bus: %w", err)
	}
	return nil
}

func (r UserRepository) GetBus(ctx context.Context, busNumber string) (models.Bus, error) {
	var b models.Bus
	err := r.DB.QueryRowContext(ctx, `SELECT bus_number, bus_name, operator_id FROM buses WHERE bus_number=? LIMIT 1`, busNumber).
		Scan(&b.BusNumber, &b.BusName, &b.OperatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bus{}, ErrNotFound
	}
	return b, err
}

func (r UserRepository) ListBusNumbersByOperator(ctx context.Context, operatorID int64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT bus_number FROM buses WHERE operator_id=? ORDER BY bus_number ASC`, operatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var bn string
		if err := rows.Scan(&bn); err != nil {
			return out, err
		}
		out = append(out, bn)
	}
	return out, rows.Err()
}
