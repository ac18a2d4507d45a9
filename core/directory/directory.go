// Package directory declares the read-only collaborators the dispatch engine
// consults: the account directory and the equipment inventory.
package directory

import (
	"context"

	"github.com/kilianp07/rentmatch/core/model"
)

// AccountDirectory resolves accounts.
type AccountDirectory interface {
	// ListOwners returns every account holding the OWNER capability.
	ListOwners(ctx context.Context) ([]model.Account, error)
	GetAccount(ctx context.Context, id string) (model.Account, error)
}

// Inventory resolves equipment.
type Inventory interface {
	GetEquipment(ctx context.Context, id string) (model.Equipment, error)
}

// Directory bundles both lookups.
type Directory interface {
	AccountDirectory
	Inventory
}
