package codebase

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// languageCommentPrefix maps a source extension to the language name
// reported in LanguageLineCounts and its single-line comment marker. Only
// languages with a plain "//"-or-"#"-style line comment are covered: this
// is a line-count heuristic, not a real tokenizer.
var languageCommentPrefix = map[string]struct {
	name    string
	comment string
}{
	".rs":   {"Rust", "//"},
	".go":   {"Go", "//"},
	".py":   {"Python", "#"},
	".js":   {"JavaScript", "//"},
	".ts":   {"TypeScript", "//"},
	".c":    {"C", "//"},
	".h":    {"C", "//"},
	".cpp":  {"C++", "//"},
	".sh":   {"Shell", "#"},
	".rb":   {"Ruby", "#"},
	".toml": {"TOML", "#"},
	".yml":  {"YAML", "#"},
	".yaml": {"YAML", "#"},
}

var skipDirs = map[string]bool{
	".git": true, "target": true, "node_modules": true, "vendor": true,
}

var unsafeTokenPattern = regexp.MustCompile(`\bunsafe\b`)

type fileStats struct {
	isTest      bool
	isExample   bool
	production  uint64
	test        uint64
	comment     uint64
	unsafeCount uint64
	readError   bool
}

// analyzeSourceFiles walks repoPath, classifying each recognized source file
// by language and counting production/test/comment lines, `unsafe` token
// occurrences, and files under an examples/ directory.
func analyzeSourceFiles(repoPath string) (languages []facts.LanguageLineCounts, unsafeCount, exampleCount, filesAnalyzed, filesWithErrors uint64) {
	totals := make(map[string]*facts.LanguageLineCounts)

	filepath.WalkDir(repoPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := languageCommentPrefix[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		rel, _ := filepath.Rel(repoPath, path)
		stats, readErr := analyzeFile(path, lang.comment, rel)
		if readErr {
			filesWithErrors++
			return nil
		}
		filesAnalyzed++

		t, ok := totals[lang.name]
		if !ok {
			t = &facts.LanguageLineCounts{Language: lang.name}
			totals[lang.name] = t
		}
		t.Production += stats.production
		t.Test += stats.test
		t.Comment += stats.comment

		unsafeCount += stats.unsafeCount
		if stats.isExample {
			exampleCount++
		}
		return nil
	})

	for _, t := range totals {
		languages = append(languages, *t)
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i].Language < languages[j].Language })
	return languages, unsafeCount, exampleCount, filesAnalyzed, filesWithErrors
}

// analyzeFile classifies a single file as test or production code by path
// convention (anything under a "tests"/"test" directory, or named
// *_test.* / test_*), counts its comment lines by the language's single-line
// marker, and counts `unsafe` token occurrences.
func analyzeFile(path, commentPrefix, relPath string) (stats fileStats, readError bool) {
	segments := strings.Split(filepath.ToSlash(relPath), "/")
	for _, seg := range segments {
		if seg == "tests" || seg == "test" {
			stats.isTest = true
		}
		if seg == "examples" {
			stats.isExample = true
		}
	}
	base := filepath.Base(relPath)
	if strings.Contains(base, "_test.") || strings.HasPrefix(base, "test_") {
		stats.isTest = true
	}

	f, err := os.Open(path)
	if err != nil {
		return stats, true
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		stats.unsafeCount += uint64(len(unsafeTokenPattern.FindAllString(line, -1)))

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, commentPrefix):
			stats.comment++
		case stats.isTest:
			stats.test++
		default:
			stats.production++
		}
	}
	return stats, false
}
