package usage

import (
	"database/sql"
	"time"

	"equipment-tracker/internal/equipment_mgmt/holders"
)

// ===== Requests =====

type CheckOutRequest struct {
	EquipmentID  uint64  `json:"equipment_id" binding:"required"`
	HolderID     uint64  `json:"holder_id" binding:"required"`
	HolderType   string  `json:"holder_type" binding:"required,holder_type"`
	LocationID   uint64  `json:"location_id" binding:"required"`
	CheckedOutOn *string `json:"checked_out_on,omitempty"` // YYYY-MM-DD, 省略時は当日
	Note         *string `json:"note,omitempty" binding:"omitempty,max=255"`
}

type CheckInRequest struct {
	UsageID    uint64  `json:"usage_id" binding:"required"`
	ReturnedOn *string `json:"returned_on,omitempty"` // YYYY-MM-DD, 省略時は当日
}

// ===== Responses =====

type UsageResponse struct {
	UsageID      uint64          `json:"usage_id"`
	UsageULID    string          `json:"usage_ulid"`
	EquipmentID  uint64          `json:"equipment_id"`
	HolderID     uint64          `json:"holder_id"`
	HolderType   holders.Type    `json:"holder_type"`
	LocationID   uint64          `json:"location_id"`
	CheckedOutOn string          `json:"checked_out_on"`
	ReturnedOn   *string         `json:"returned_on"`
	Open         bool            `json:"open"`
	Note         *string         `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Holder       *holders.Holder `json:"holder,omitempty"`
}

func buildUsageResponse(u *Usage) UsageResponse {
	res := UsageResponse{
		UsageID:      u.UsageID,
		UsageULID:    u.UsageULID,
		EquipmentID:  u.EquipmentID,
		HolderID:     u.HolderID,
		HolderType:   u.HolderType,
		LocationID:   u.LocationID,
		CheckedOutOn: u.CheckedOutOn.Format(DateLayout),
		Open:         u.Open(),
		CreatedAt:    u.CreatedAt,
	}
	if u.ReturnedOn.Valid {
		v := u.ReturnedOn.Time.Format(DateLayout)
		res.ReturnedOn = &v
	}
	if u.Note.Valid {
		v := u.Note.String
		res.Note = &v
	}
	return res
}

const notCheckedOutMessage = "Equipment is not currently checked out"

type LocationResponse struct {
	CheckedOut    bool          `json:"checked_out"`
	Message       string        `json:"message,omitempty"`
	EquipmentID   uint64        `json:"equipment_id"`
	EquipmentName string        `json:"equipment_name"`
	UsageID       *uint64       `json:"usage_id,omitempty"`
	LocationID    *uint64       `json:"location_id,omitempty"`
	LocationName  *string       `json:"location_name,omitempty"`
	Building      *string       `json:"building,omitempty"`
	RoomNo        *string       `json:"room_no,omitempty"`
	CheckedOutOn  *string       `json:"checked_out_on,omitempty"`
	HolderID      *uint64       `json:"holder_id,omitempty"`
	HolderType    *holders.Type `json:"holder_type,omitempty"`
}

func buildLocationResponse(cl *CurrentLocation) LocationResponse {
	res := LocationResponse{
		EquipmentID:   cl.EquipmentID,
		EquipmentName: cl.EquipmentName,
	}
	u := cl.Open
	if u == nil {
		res.Message = notCheckedOutMessage
		return res
	}
	res.CheckedOut = true
	res.UsageID = &u.UsageID
	res.LocationID = &u.LocationID
	res.LocationName = nullStrPtr(cl.LocationName)
	res.Building = nullStrPtr(cl.Building)
	res.RoomNo = nullStrPtr(cl.RoomNo)
	d := u.CheckedOutOn.Format(DateLayout)
	res.CheckedOutOn = &d
	res.HolderID = &u.HolderID
	res.HolderType = &u.HolderType
	return res
}

func nullStrPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
