// Package equipment owns the asset register: what can be checked out.
package equipment

import "time"

const DateLayout = "2006-01-02"

type Equipment struct {
	EquipmentID     uint64     `db:"equipment_id"`
	Name            string     `db:"name"`
	Category        *string    `db:"category"`
	PurchaseDate    *time.Time `db:"purchase_date"`
	ConditionStatus *string    `db:"condition_status"`
	ArchivedAt      *time.Time `db:"archived_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

func (e Equipment) Archived() bool { return e.ArchivedAt != nil }

type ListQuery struct {
	Category        *string
	NameLike        *string
	IncludeArchived bool
}
