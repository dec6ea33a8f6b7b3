package models

import (
	"time"

	"github.com/google/uuid"
)

// ApiTransaction records one successful provider call and its raw response body.
type ApiTransaction struct {
	ID          int64      `json:"id"`
	Source      string     `json:"source"`
	Category    string     `json:"category"`     // import action, e.g. "Splits"
	SubCategory string     `json:"sub_category"` // usually the ticker
	URI         string     `json:"uri"`
	Response    string     `json:"response"`
	StatusCode  int        `json:"status_code"`
	ProcessID   *uuid.UUID `json:"process_id"`
	CreatedAt   time.Time  `json:"created_at"`
}
