package todo

import "errors"

var (
	ErrNotFound        = errors.New("todo not found")
	ErrAlreadyComplete = errors.New("todo already complete")
)

type Todo struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Complete bool   `json:"complete"`
	UserID   int64  `json:"-"` // owner's internal key
}
