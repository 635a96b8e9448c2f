// Package county keeps each nation's county table and resolves which county a
// town belongs to. Assignments are validated against the registry and pushed
// through to verified identities in the same call.
package county

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"discadian/internal/platform/config"
	"discadian/internal/registry"
	dErrors "discadian/pkg/domain-errors"
)

// Persister loads and saves the county table document.
type Persister interface {
	Load(v any) (bool, error)
	Save(v any) error
}

// TownLookup reads towns from the registry without the lookup cache.
type TownLookup interface {
	LookupTownFresh(ctx context.Context, nameOrUUID string) registry.Result[registry.Town]
}

// IdentityUpdater propagates county changes to verified identities.
type IdentityUpdater interface {
	SetCountyForTowns(ctx context.Context, nationUUID string, townUUIDs []string, county string) (int, error)
	RenameCounty(ctx context.Context, nationUUID, oldName, newName string) (int, error)
}

// Resolver owns the county table. Mutations are serialised and persisted
// before returning; a failed save leaves the table as it was.
type Resolver struct {
	mu         sync.RWMutex
	counties   table
	persister  Persister
	towns      TownLookup
	identities IdentityUpdater
	logger     *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIdentityUpdater enables propagation of assignments and renames.
func WithIdentityUpdater(u IdentityUpdater) Option {
	return func(r *Resolver) {
		r.identities = u
	}
}

// New loads the county table through p.
func New(p Persister, towns TownLookup, opts ...Option) (*Resolver, error) {
	if p == nil {
		return nil, errors.New("persister is required")
	}
	if towns == nil {
		return nil, errors.New("town lookup is required")
	}
	r := &Resolver{
		persister: p,
		towns:     towns,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	t := table{}
	if _, err := p.Load(&t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistenceFailure, "load county table")
	}
	for _, n := range t {
		if n.Counties == nil {
			n.Counties = map[string]*County{}
		}
	}
	r.counties = t
	return r, nil
}

func (r *Resolver) mutate(fn func(t table) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.counties.clone()
	if err := fn(r.counties); err != nil {
		r.counties = prev
		return err
	}
	if err := r.persister.Save(r.counties); err != nil {
		r.counties = prev
		r.logger.Error("county table persist failed, in-memory state reverted", "error", err)
		return dErrors.Wrap(err, dErrors.CodePersistenceFailure, "Failed to save configuration changes.")
	}
	return nil
}

// Resolve places townUUID within the county table of the nation identified
// by UUID or name.
func (r *Resolver) Resolve(nationUUIDOrName, townUUID string) Resolution {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, n, ok := r.counties.find(nationUUIDOrName)
	if !ok {
		return Resolution{HasCounty: true}
	}
	if name, c, ok := n.countyOf(townUUID); ok {
		return Resolution{CountyName: name, RoleID: c.RoleID, HasCounty: true, Configured: true}
	}
	return Resolution{RoleID: n.NoCountyRoleID, Configured: true}
}

// RoleIDs returns every county role and the no-county role of a nation.
func (r *Resolver) RoleIDs(nationUUIDOrName string) []config.Snowflake {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, n, ok := r.counties.find(nationUUIDOrName)
	if !ok {
		return nil
	}
	var out []config.Snowflake
	for _, c := range n.Counties {
		if c.RoleID != "" {
			out = append(out, c.RoleID)
		}
	}
	if n.NoCountyRoleID != "" {
		out = append(out, n.NoCountyRoleID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// List returns the counties of a nation sorted by name.
func (r *Resolver) List(nationUUIDOrName string) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, n, ok := r.counties.find(nationUUIDOrName)
	if !ok {
		return nil, notConfigured(nationUUIDOrName)
	}
	out := make([]Summary, 0, len(n.Counties))
	for countyName, c := range n.Counties {
		out = append(out, Summary{Name: countyName, RoleID: c.RoleID, Towns: append([]string(nil), c.Towns...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	r.logger.Debug("listed counties", "nation", name, "count", len(out))
	return out, nil
}

// EnableNation creates an empty county table for a nation. Enabling an
// already configured nation updates its UUID.
func (r *Resolver) EnableNation(nationName, nationUUID string) error {
	if strings.TrimSpace(nationName) == "" || strings.TrimSpace(nationUUID) == "" {
		return dErrors.New(dErrors.CodeValidation, "nation name and uuid are required")
	}
	return r.mutate(func(t table) error {
		if name, n, ok := t.find(nationName); ok {
			n.NationUUID = nationUUID
			r.logger.Info("county system already enabled", "nation", name)
			return nil
		}
		t[nationName] = &NationCounties{NationUUID: nationUUID, Counties: map[string]*County{}}
		return nil
	})
}

// CreateCounty adds an empty county.
func (r *Resolver) CreateCounty(nation, county string, roleID config.Snowflake) error {
	county = strings.TrimSpace(county)
	if county == "" {
		return dErrors.New(dErrors.CodeValidation, "county name is required")
	}
	return r.mutate(func(t table) error {
		name, n, ok := t.find(nation)
		if !ok {
			return notConfigured(nation)
		}
		if _, exists := n.Counties[county]; exists {
			return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("County `%s` already exists in nation `%s`.", county, name))
		}
		n.Counties[county] = &County{Towns: []string{}, RoleID: roleID}
		return nil
	})
}

// DeleteCounty removes a county and clears it from every identity in its
// towns.
func (r *Resolver) DeleteCounty(ctx context.Context, nation, county string) (UnassignResult, error) {
	var (
		nationUUID string
		towns      []string
		name       string
	)
	err := r.mutate(func(t table) error {
		var n *NationCounties
		var ok bool
		name, n, ok = t.find(nation)
		if !ok {
			return notConfigured(nation)
		}
		c, exists := n.Counties[county]
		if !exists {
			return missingCounty(county, name)
		}
		nationUUID, towns = n.NationUUID, append([]string(nil), c.Towns...)
		delete(n.Counties, county)
		return nil
	})
	if err != nil {
		return UnassignResult{}, err
	}
	res := UnassignResult{
		Message: fmt.Sprintf("Deleted county `%s` from nation `%s`.", county, name),
		County:  county,
	}
	res.UpdatedIdentities, err = r.propagate(ctx, nationUUID, towns, "")
	return res, err
}

// SetNoCountyRole sets the role given to citizens of unassigned towns.
func (r *Resolver) SetNoCountyRole(nation string, roleID config.Snowflake) error {
	return r.mutate(func(t table) error {
		_, n, ok := t.find(nation)
		if !ok {
			return notConfigured(nation)
		}
		n.NoCountyRoleID = roleID
		return nil
	})
}

// Assign places a town in a county after checking with the registry that
// the town belongs to the nation. A town already in another county of the
// nation is moved.
func (r *Resolver) Assign(ctx context.Context, nation, county, town string) (AssignResult, error) {
	r.mu.RLock()
	name, n, ok := r.counties.find(nation)
	var nationUUID string
	if ok {
		nationUUID = n.NationUUID
	}
	r.mu.RUnlock()
	if !ok {
		return AssignResult{}, notConfigured(nation)
	}

	found, err := r.validateTown(ctx, town, nationUUID)
	if err != nil {
		return AssignResult{}, err
	}

	res := AssignResult{Nation: name, County: county, TownName: found.Name, TownUUID: found.UUID}
	err = r.mutate(func(t table) error {
		_, n, ok := t.find(nationUUID)
		if !ok {
			return notConfigured(nation)
		}
		target, exists := n.Counties[county]
		if !exists {
			return missingCounty(county, name)
		}
		if target.has(found.UUID) {
			return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("Town is already in county `%s`.", county))
		}
		if prevName, prev, ok := n.countyOf(found.UUID); ok {
			prev.remove(found.UUID)
			res.PreviousCounty = prevName
		}
		target.Towns = append(target.Towns, found.UUID)
		return nil
	})
	if err != nil {
		return AssignResult{}, err
	}

	r.logger.InfoContext(ctx, "town assigned to county",
		"nation", name,
		"county", county,
		"town", found.Name,
		"town_uuid", found.UUID,
		"previous_county", res.PreviousCounty,
	)
	res.Message = fmt.Sprintf("Successfully added town `%s` to county `%s` in nation `%s`.", found.Name, county, name)
	if res.PreviousCounty != "" {
		res.Message += fmt.Sprintf(" Moved from county `%s`.", res.PreviousCounty)
	}
	res.UpdatedIdentities, err = r.propagate(ctx, nationUUID, []string{found.UUID}, county)
	return res, err
}

func (r *Resolver) validateTown(ctx context.Context, town, nationUUID string) (registry.Town, error) {
	result := r.towns.LookupTownFresh(ctx, town)
	if !result.OK() {
		return registry.Town{}, townLookupFailed(result)
	}
	t := result.Value
	if !t.Nation.Present() {
		return registry.Town{}, dErrors.New(dErrors.CodeIneligible,
			fmt.Sprintf("Town '%s' is not in any nation", t.Name))
	}
	if t.Nation.UUID != nationUUID {
		return registry.Town{}, dErrors.New(dErrors.CodeIneligible,
			fmt.Sprintf("Town '%s' belongs to different nation `%s` (UUID: %s)", t.Name, t.Nation.Name, t.Nation.UUID))
	}
	return t, nil
}

// Unassign removes a town from whichever county holds it. town may be a
// town UUID or a name; names are resolved through the registry.
func (r *Resolver) Unassign(ctx context.Context, nation, town string) (UnassignResult, error) {
	townUUID := town
	if !registry.IsUUID(town) {
		result := r.towns.LookupTownFresh(ctx, town)
		if !result.OK() {
			return UnassignResult{}, townLookupFailed(result)
		}
		townUUID = result.Value.UUID
	}

	var (
		res        UnassignResult
		name       string
		nationUUID string
	)
	err := r.mutate(func(t table) error {
		var n *NationCounties
		var ok bool
		name, n, ok = t.find(nation)
		if !ok {
			return notConfigured(nation)
		}
		nationUUID = n.NationUUID
		countyName, c, ok := n.countyOf(townUUID)
		if !ok {
			return dErrors.New(dErrors.CodeNotFound,
				fmt.Sprintf("Town is not currently assigned to any county in nation `%s`.", name))
		}
		c.remove(townUUID)
		res.County = countyName
		return nil
	})
	if err != nil {
		return UnassignResult{}, err
	}
	res.Message = fmt.Sprintf("Successfully removed town from county `%s` in nation `%s`.", res.County, name)
	res.UpdatedIdentities, err = r.propagate(ctx, nationUUID, []string{townUUID}, "")
	return res, err
}

// Rename renames a county and every identity recorded under the old name.
func (r *Resolver) Rename(ctx context.Context, nation, oldName, newName string) (RenameResult, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return RenameResult{}, dErrors.New(dErrors.CodeValidation, "new county name is required")
	}
	var (
		res        RenameResult
		name       string
		nationUUID string
	)
	err := r.mutate(func(t table) error {
		var n *NationCounties
		var ok bool
		name, n, ok = t.find(nation)
		if !ok {
			return notConfigured(nation)
		}
		nationUUID = n.NationUUID
		c, exists := n.Counties[oldName]
		if !exists {
			return dErrors.New(dErrors.CodeNotFound,
				fmt.Sprintf("County `%s` does not exist in nation `%s`.", oldName, name))
		}
		if _, taken := n.Counties[newName]; taken {
			return dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("County `%s` already exists in nation `%s`.", newName, name))
		}
		delete(n.Counties, oldName)
		n.Counties[newName] = c
		res.Towns = len(c.Towns)
		return nil
	})
	if err != nil {
		return RenameResult{}, err
	}
	res.Message = fmt.Sprintf("Successfully renamed county `%s` to `%s` in nation `%s`.", oldName, newName, name)

	if r.identities != nil {
		res.UpdatedIdentities, err = r.identities.RenameCounty(ctx, nationUUID, oldName, newName)
		if err != nil {
			r.logger.ErrorContext(ctx, "county rename propagation failed", "nation", name, "error", err)
			return res, err
		}
	}
	return res, nil
}

func (r *Resolver) propagate(ctx context.Context, nationUUID string, towns []string, county string) (int, error) {
	if r.identities == nil || len(towns) == 0 {
		return 0, nil
	}
	n, err := r.identities.SetCountyForTowns(ctx, nationUUID, towns, county)
	if err != nil {
		r.logger.ErrorContext(ctx, "county propagation failed",
			"nation_uuid", nationUUID,
			"county", county,
			"error", err,
		)
		return 0, err
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "updated identity counties", "count", n, "county", county)
	}
	return n, nil
}

func notConfigured(nation string) error {
	return dErrors.New(dErrors.CodeNotFound,
		fmt.Sprintf("Nation `%s` does not have a county system configured.", nation))
}

func missingCounty(county, nation string) error {
	return dErrors.New(dErrors.CodeNotFound,
		fmt.Sprintf("County `%s` does not exist in nation `%s`. Create it first.", county, nation))
}

func townLookupFailed(result registry.Result[registry.Town]) error {
	return dErrors.New(dErrors.CodeOf(result.Err()), "Could not validate town: "+result.Reason)
}
