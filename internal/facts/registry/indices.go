package registry

import "github.com/vitaliisemenov/alert-history/internal/facts/tables"

// indices holds every secondary lookup the provider builds once per run by
// scanning its relation tables a single time. The binary tables themselves
// offer no keyed access beyond the crate-name index built in tables.NameIndex,
// so joins that fan out from a crate or version (versions, owners,
// categories, keywords, downloads, dependents) need their own grouping maps
// or every lookup degrades to a linear scan of a multi-million-row table.
type indices struct {
	versionsByCrate   map[tables.CrateID][]tables.Index
	ownersByCrate     map[tables.CrateID][]tables.Index
	categoriesByCrate map[tables.CrateID][]tables.Index
	keywordsByCrate   map[tables.CrateID][]tables.Index

	crateDownloadByCrate    map[tables.CrateID]tables.Index
	versionDownloadsByVer   map[tables.VersionID][]tables.Index
	crateIDByVersion        map[tables.VersionID]tables.CrateID
	dependentsByTargetCrate map[tables.CrateID]map[tables.CrateID]struct{}

	usersByID map[tables.UserID]tables.Index
	teamsByID map[tables.TeamID]tables.Index

	categoriesByID map[tables.CategoryID]tables.Index
	keywordsByID   map[tables.KeywordID]tables.Index
}

func buildIndices(mgr *tables.Manager) *indices {
	idx := &indices{
		versionsByCrate:         make(map[tables.CrateID][]tables.Index),
		ownersByCrate:           make(map[tables.CrateID][]tables.Index),
		categoriesByCrate:       make(map[tables.CrateID][]tables.Index),
		keywordsByCrate:         make(map[tables.CrateID][]tables.Index),
		crateDownloadByCrate:    make(map[tables.CrateID]tables.Index),
		versionDownloadsByVer:   make(map[tables.VersionID][]tables.Index),
		crateIDByVersion:        make(map[tables.VersionID]tables.CrateID),
		dependentsByTargetCrate: make(map[tables.CrateID]map[tables.CrateID]struct{}),
		usersByID:               make(map[tables.UserID]tables.Index),
		teamsByID:               make(map[tables.TeamID]tables.Index),
		categoriesByID:          make(map[tables.CategoryID]tables.Index),
		keywordsByID:            make(map[tables.KeywordID]tables.Index),
	}

	for row, pos := range mgr.Versions.All() {
		idx.versionsByCrate[row.CrateID] = append(idx.versionsByCrate[row.CrateID], pos)
		idx.crateIDByVersion[row.ID] = row.CrateID
	}
	for row, pos := range mgr.CrateOwners.All() {
		idx.ownersByCrate[row.CrateID] = append(idx.ownersByCrate[row.CrateID], pos)
	}
	for row, pos := range mgr.CratesCategories.All() {
		idx.categoriesByCrate[row.CrateID] = append(idx.categoriesByCrate[row.CrateID], pos)
	}
	for row, pos := range mgr.CratesKeywords.All() {
		idx.keywordsByCrate[row.CrateID] = append(idx.keywordsByCrate[row.CrateID], pos)
	}
	for row, pos := range mgr.CrateDownloads.All() {
		idx.crateDownloadByCrate[row.CrateID] = pos
	}
	for row, pos := range mgr.VersionDownloads.All() {
		idx.versionDownloadsByVer[row.VersionID] = append(idx.versionDownloadsByVer[row.VersionID], pos)
	}
	for row, pos := range mgr.Users.All() {
		idx.usersByID[row.ID] = pos
	}
	for row, pos := range mgr.Teams.All() {
		idx.teamsByID[row.ID] = pos
	}
	for row, pos := range mgr.Categories.All() {
		idx.categoriesByID[row.ID] = pos
	}
	for row, pos := range mgr.Keywords.All() {
		idx.keywordsByID[row.ID] = pos
	}
	for row, _ := range mgr.Dependencies.All() {
		dependent, ok := idx.crateIDByVersion[row.VersionID]
		if !ok {
			continue
		}
		set, ok := idx.dependentsByTargetCrate[row.CrateID]
		if !ok {
			set = make(map[tables.CrateID]struct{})
			idx.dependentsByTargetCrate[row.CrateID] = set
		}
		set[dependent] = struct{}{}
	}

	return idx
}
