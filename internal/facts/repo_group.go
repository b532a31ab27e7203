package facts

// RepoGroup is one distinct repository plus every CrateSpec that names it.
// A single mirror clone or HTTP lookup serves every crate in the group.
type RepoGroup struct {
	Repo  RepoSpec
	Specs []CrateSpec
}

func repoKey(r RepoSpec) string {
	return r.host + "/" + r.owner + "/" + r.repo
}

// GroupByRepo partitions specs by their RepoSpec, deduplicating repos shared
// by multiple crates. Specs with no repository are dropped: every
// repo-scoped provider has nothing to query for them.
func GroupByRepo(specs []CrateSpec) []RepoGroup {
	order := make([]string, 0, len(specs))
	groups := make(map[string]*RepoGroup)

	for _, spec := range specs {
		repo := spec.Repo()
		if repo == nil {
			continue
		}
		key := repoKey(*repo)
		g, ok := groups[key]
		if !ok {
			g = &RepoGroup{Repo: *repo}
			groups[key] = g
			order = append(order, key)
		}
		g.Specs = append(g.Specs, spec)
	}

	result := make([]RepoGroup, len(order))
	for i, key := range order {
		result[i] = *groups[key]
	}
	return result
}
