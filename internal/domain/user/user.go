package user

import "errors"

var (
	ErrNotFound  = errors.New("user not found")
	ErrNameTaken = errors.New("name already taken")
)

type User struct {
	ID           int64  `json:"-"` // internal store key, never exposed
	PublicID     string `json:"public_id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	Admin        bool   `json:"admin"`
}
