package registry

import (
	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/tables"
)

// resolveOwners joins crate_owners rows against the users and teams tables,
// tagging each result with the matching facts.OwnerKind. An owner row whose
// target id is no longer present in users/teams (a dump consistency gap) is
// skipped rather than surfaced as a zero-value owner.
func (p *Provider) resolveOwners(ownerPositions []tables.Index) []facts.Owner {
	owners := make([]facts.Owner, 0, len(ownerPositions))
	for _, pos := range ownerPositions {
		row := p.mgr.CrateOwners.Get(pos)
		kind, ownerID := row.Owner()
		switch kind {
		case tables.OwnerKindUser:
			idx, ok := p.idx.usersByID[tables.UserID(ownerID)]
			if !ok {
				continue
			}
			user := p.mgr.Users.Get(idx)
			owners = append(owners, facts.Owner{Kind: facts.OwnerUser, Login: user.GHLogin, Name: user.Name})
		case tables.OwnerKindTeam:
			idx, ok := p.idx.teamsByID[tables.TeamID(ownerID)]
			if !ok {
				continue
			}
			team := p.mgr.Teams.Get(idx)
			owners = append(owners, facts.Owner{Kind: facts.OwnerTeam, Login: team.Login, Name: team.Name})
		}
	}
	return owners
}
