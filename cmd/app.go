package cmd

import (
	"database/sql"

	"go.uber.org/zap"

	"equipment-tracker/internal/equipment_mgmt/equipment"
	"equipment-tracker/internal/equipment_mgmt/holders"
	"equipment-tracker/internal/equipment_mgmt/locations"
	"equipment-tracker/internal/equipment_mgmt/usage"
	"equipment-tracker/internal/platform/auth"
	"equipment-tracker/internal/platform/db"
)

// services wires every store onto one connection pool.
type services struct {
	Auth      *auth.Service
	Holders   *holders.Service
	Equipment *equipment.Service
	Locations *locations.Service
	Usage     *usage.Service
}

func newServices(conn *sql.DB, cfg *db.Config, log *zap.Logger) *services {
	x := db.X(conn)
	hs := holders.NewService(holders.NewStore(x), log.Named("holders"))
	return &services{
		Auth:      auth.NewService(auth.NewStore(conn), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log.Named("auth")),
		Holders:   hs,
		Equipment: equipment.NewService(equipment.NewStore(x), log.Named("equipment")),
		Locations: locations.NewService(locations.NewStore(x), log.Named("locations")),
		Usage:     usage.NewService(usage.NewStore(x), hs, log.Named("usage")),
	}
}
