// Package ignorerules parses a single ignore file's contents (.gitignore
// syntax) into a rule set that classifies a path relative to that file's
// directory as Whitelist, Ignore, or None.
//
// sabhiram/go-gitignore collapses a ruleset to a single bool ("is this path
// ignored"), folding negated patterns into the answer internally. That loses
// the distinction the ancestor walk in spec.md §4.4 needs: a directory's
// rules can explicitly un-ignore a path (Whitelist), which must stop the
// walk right there, even though a less specific ancestor rule would
// otherwise have ignored it. So the match result here is kept three-valued
// and the walk across ancestors lives in snapshot.IsPathIgnored, not here.
package ignorerules

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Classification is the result of matching a path against a Rules set.
type Classification int

const (
	// None means the rule set has no opinion; the caller should consult the
	// next ancestor directory's rules.
	None Classification = iota
	// Ignore means the rule set's last matching pattern was a plain
	// (non-negated) pattern.
	Ignore
	// Whitelist means the rule set's last matching pattern was a negated
	// ("!pattern") pattern, explicitly overriding an Ignore from further out.
	Whitelist
)

type compiledPattern struct {
	glob    string
	negate  bool
	dirOnly bool
}

// Rules is the compiled form of one ignore file's pattern lines, in file
// order (order matters: gitignore semantics are "last matching line wins").
type Rules struct {
	patterns []compiledPattern
}

// Empty reports whether the rule set has no patterns, letting callers skip
// allocating a traversal entry for an ignore file that turned out blank.
func (r Rules) Empty() bool { return len(r.patterns) == 0 }

// Parse compiles the line-oriented contents of a .gitignore-syntax file.
// Parse never fails: unrecognized or malformed lines are skipped, matching
// git's own permissive behavior, since a worktree scan must never abort on
// a malformed ignore file.
func Parse(contents string) Rules {
	var rules Rules
	for _, line := range strings.Split(contents, "\n") {
		if p, ok := compileLine(line); ok {
			rules.patterns = append(rules.patterns, p)
		}
	}
	return rules
}

func compileLine(line string) (compiledPattern, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return compiledPattern{}, false
	}

	var p compiledPattern
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if line == "" {
		return compiledPattern{}, false
	}
	if strings.HasPrefix(line, `\!`) || strings.HasPrefix(line, `\#`) {
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
		if line == "" {
			return compiledPattern{}, false
		}
	}

	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if !anchored && !strings.Contains(line, "/") {
		p.glob = "**/" + line
	} else {
		p.glob = line
	}
	return p, true
}

// Match classifies relPath (slash-separated, relative to the directory this
// Rules was parsed from) against the compiled patterns. The last matching
// pattern determines the result; a path with no matching pattern is None.
//
// A pattern that matches one of relPath's ancestor directory components
// also matches relPath itself: once git (and this scanner) decides not to
// descend into an ignored directory, nothing below it is ever individually
// tested against a pattern again, so a nested path inherits its nearest
// ignored ancestor's verdict even when no pattern matches the nested path's
// own full string.
func (r Rules) Match(relPath string, isDir bool) Classification {
	parts := strings.Split(relPath, "/")
	result := None
	for _, p := range r.patterns {
		if !patternMatches(p, parts, isDir) {
			continue
		}
		if p.negate {
			result = Whitelist
		} else {
			result = Ignore
		}
	}
	return result
}

func patternMatches(p compiledPattern, parts []string, isDir bool) bool {
	full := strings.Join(parts, "/")
	if (!p.dirOnly || isDir) && matches(p.glob, full) {
		return true
	}
	// Every strict prefix of relPath names a directory, so a dirOnly
	// pattern applies to it unconditionally.
	for i := 1; i < len(parts); i++ {
		if matches(p.glob, strings.Join(parts[:i], "/")) {
			return true
		}
	}
	return false
}

func matches(glob, path string) bool {
	ok, _ := doublestar.Match(glob, path)
	return ok
}
