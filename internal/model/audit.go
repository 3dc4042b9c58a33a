package model

import "time"

// Audit carries the who-did-what and soft-delete columns shared by every
// persisted entity.  The repository layer stamps these fields through a
// single write hook; services never touch them directly.  A row with
// IsDeleted=true is invisible to default queries but remains available to
// audit queries.
type Audit struct {
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy string     `json:"created_by,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	IsDeleted bool       `json:"-"`
	DeletedAt *time.Time `json:"-"`
	DeletedBy *string    `json:"-"`
}
