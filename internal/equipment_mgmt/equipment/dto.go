package equipment

import "time"

// ===== Requests =====

type CreateEquipmentRequest struct {
	EquipmentID     uint64  `json:"equipment_id"` // 0 = auto
	Name            string  `json:"name" binding:"required,max=100"`
	Category        *string `json:"category,omitempty" binding:"omitempty,max=50"`
	PurchaseDate    *string `json:"purchase_date,omitempty"` // YYYY-MM-DD
	ConditionStatus *string `json:"condition_status,omitempty" binding:"omitempty,max=50"`
}

// 作成後に変更できるのは分類と状態のみ
type UpdateEquipmentRequest struct {
	Category        *string `json:"category,omitempty" binding:"omitempty,max=50"`
	ConditionStatus *string `json:"condition_status,omitempty" binding:"omitempty,max=50"`
}

// ===== Responses =====

type EquipmentResponse struct {
	EquipmentID     uint64     `json:"equipment_id"`
	Name            string     `json:"name"`
	Category        *string    `json:"category,omitempty"`
	PurchaseDate    *string    `json:"purchase_date,omitempty"`
	ConditionStatus *string    `json:"condition_status,omitempty"`
	Archived        bool       `json:"archived"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toResponse(e *Equipment) EquipmentResponse {
	res := EquipmentResponse{
		EquipmentID:     e.EquipmentID,
		Name:            e.Name,
		Category:        e.Category,
		ConditionStatus: e.ConditionStatus,
		Archived:        e.Archived(),
		ArchivedAt:      e.ArchivedAt,
		CreatedAt:       e.CreatedAt,
	}
	if e.PurchaseDate != nil {
		d := e.PurchaseDate.Format(DateLayout)
		res.PurchaseDate = &d
	}
	return res
}
