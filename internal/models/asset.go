package models

import (
	"time"

	"github.com/google/uuid"
)

type AssetType string

const (
	AssetTypeVehicle AssetType = "vehicle"
	AssetTypeDevice  AssetType = "device"
	AssetTypeTeam    AssetType = "team"
	AssetTypeGeneric AssetType = "generic"
)

type Asset struct {
	ID        uuid.UUID `db:"id"`
	Type      AssetType `db:"type"`
	Name      string    `db:"name"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}
