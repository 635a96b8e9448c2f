package roles

import (
	"context"
	"sync"

	"discadian/internal/platform/config"
)

// MemoryApplier keeps guild members in process. It backs dry runs and tests.
type MemoryApplier struct {
	mu      sync.Mutex
	members map[string]map[string]*Member
	applied []Plan
}

func NewMemoryApplier() *MemoryApplier {
	return &MemoryApplier{members: map[string]map[string]*Member{}}
}

// Join places a member in a guild.
func (a *MemoryApplier) Join(guildID, discordID string, m Member) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.members[guildID] == nil {
		a.members[guildID] = map[string]*Member{}
	}
	m.Roles = append([]config.Snowflake(nil), m.Roles...)
	a.members[guildID][discordID] = &m
}

func (a *MemoryApplier) Member(_ context.Context, guildID, discordID string) (Member, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.members[guildID][discordID]
	if !ok {
		return Member{}, false, nil
	}
	return Member{Roles: append([]config.Snowflake(nil), m.Roles...), Nickname: m.Nickname}, true, nil
}

func (a *MemoryApplier) Apply(_ context.Context, discordID string, plan Plan) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, plan)

	m, ok := a.members[plan.GuildID][discordID]
	if !ok {
		return nil
	}
	remove := roleSet{}
	remove.add(plan.Remove...)
	kept := m.Roles[:0]
	for _, r := range m.Roles {
		if !remove.has(r) {
			kept = append(kept, r)
		}
	}
	m.Roles = append(kept, plan.Add...)
	if plan.Nickname != nil {
		m.Nickname = *plan.Nickname
	}
	return nil
}

// Applied returns every plan applied so far.
func (a *MemoryApplier) Applied() []Plan {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Plan(nil), a.applied...)
}
