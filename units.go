package smx

import (
	"fmt"

	"github.com/gopasspw/gopass/pkg/set"
)

// UnitType names a pluggable feature module.
type UnitType string

// Known unit types.
const (
	UnitGit UnitType = "git"
	UnitBin UnitType = "bin"
)

// UnitConfig records whether a unit is enabled for the local repo.
type UnitConfig struct {
	ID      string   `json:"id"`
	Enabled bool     `json:"enabled"`
	Type    UnitType `json:"type"`
}

// Units manages the units of the local config.
type Units struct {
	handler *Handler
}

// NewUnits creates a Units over h.
func NewUnits(h *Handler) *Units {
	return &Units{handler: h}
}

func (u *Units) local() (*ConfigFile[LocalConfig], error) {
	f := u.handler.LocalFile()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrScopeNotLoaded, ScopeLocal)
	}

	return f, nil
}

// Enable enables a unit, adding it if needed.
func (u *Units) Enable(id string, typ UnitType) error {
	if !validID(id) {
		return fmt.Errorf("%w: unit id %q", ErrInvalidKey, id)
	}

	f, err := u.local()
	if err != nil {
		return err
	}

	f.Config().Units[id] = UnitConfig{ID: id, Enabled: true, Type: typ}

	return f.Save()
}

// Disable disables a unit. Unknown units are ignored.
func (u *Units) Disable(id string) error {
	f, err := u.local()
	if err != nil {
		return err
	}

	units := f.Config().Units
	uc, found := units[id]
	if !found || !uc.Enabled {
		return nil
	}
	uc.Enabled = false
	units[id] = uc

	return f.Save()
}

// Enabled returns true if the unit exists and is enabled.
func (u *Units) Enabled(id string) bool {
	f, err := u.local()
	if err != nil {
		return false
	}

	return f.Config().Units[id].Enabled
}

// List returns all units sorted by id.
func (u *Units) List() []UnitConfig {
	f, err := u.local()
	if err != nil {
		return nil
	}

	units := f.Config().Units
	out := make([]UnitConfig, 0, len(units))
	for _, id := range set.SortedKeys(units) {
		out = append(out, units[id])
	}

	return out
}
