package advisories

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// advisory is one parsed RustSec-format security advisory: an informational
// warning (unmaintained/unsound/notice) or a vulnerability with a CVSS
// vector, scoped to a single crate and a set of patched/unaffected version
// ranges.
type advisory struct {
	id            string
	pkg           string
	informational string
	severity      severity
	safeRanges    []*semver.Constraints
}

// isVulnerable reports whether v falls outside every patched/unaffected
// range this advisory declares. An advisory with no declared ranges at all
// affects every version of the package.
func (a advisory) isVulnerable(v *semver.Version) bool {
	for _, c := range a.safeRanges {
		if c.Check(v) {
			return false
		}
	}
	return true
}

type advisoryFrontmatter struct {
	Advisory struct {
		ID            string `toml:"id"`
		Package       string `toml:"package"`
		Informational string `toml:"informational"`
		CVSS          string `toml:"cvss"`
	} `toml:"advisory"`
	Versions struct {
		Patched    []string `toml:"patched"`
		Unaffected []string `toml:"unaffected"`
	} `toml:"versions"`
}

// loadDatabase walks repoPath/crates for RustSec advisory files (Markdown
// with a leading ```toml frontmatter fence) and parses each into an
// advisory. Files that fail to parse are skipped rather than aborting the
// whole scan, since a single malformed advisory in a database of thousands
// should not make the provider unusable.
func loadDatabase(repoPath string) ([]advisory, error) {
	root := filepath.Join(repoPath, "crates")
	var advisories []advisory

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: reading %q: %v", facts.ErrIO, path, err)
		}
		a, ok := parseAdvisory(raw)
		if !ok {
			return nil
		}
		advisories = append(advisories, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return advisories, nil
}

func parseAdvisory(raw []byte) (advisory, bool) {
	text := string(raw)
	const fence = "```toml"
	start := strings.Index(text, fence)
	if start < 0 {
		return advisory{}, false
	}
	rest := text[start+len(fence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return advisory{}, false
	}

	var fm advisoryFrontmatter
	if err := toml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return advisory{}, false
	}
	if fm.Advisory.ID == "" || fm.Advisory.Package == "" {
		return advisory{}, false
	}

	a := advisory{
		id:            fm.Advisory.ID,
		pkg:           fm.Advisory.Package,
		informational: fm.Advisory.Informational,
	}
	if fm.Advisory.CVSS != "" {
		a.severity = severityFromCVSS(fm.Advisory.CVSS)
	}
	for _, r := range append(append([]string{}, fm.Versions.Patched...), fm.Versions.Unaffected...) {
		c, err := semver.NewConstraint(r)
		if err != nil {
			continue
		}
		a.safeRanges = append(a.safeRanges, c)
	}
	return a, true
}
