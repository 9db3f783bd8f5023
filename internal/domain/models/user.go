package models

import "busbooking/internal/domain"

type User struct {
	ID           int64       `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         domain.Role `json:"role"`
}

// Bus is read by the booking core only to resolve operator ownership.
type Bus struct {
	BusNumber  string `json:"busNumber"`
	BusName    string `json:"busName"`
	OperatorID int64  `json:"operatorId"`
}
