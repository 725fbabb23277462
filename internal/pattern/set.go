package pattern

import "strings"

// Table names the pattern list a Rule came from.
type Table string

const (
	TableName      Table = "name"
	TableExtension Table = "ext"
	TableFolder    Table = "folder"
)

// Rule identifies the pattern that classified an entry as junk.
type Rule struct {
	Table   Table
	Pattern string
}

func (r Rule) String() string {
	if r.Table == "" {
		return ""
	}
	return string(r.Table) + ":" + r.Pattern
}

// Set holds the junk tables. It is immutable once built and safe for
// concurrent use.
type Set struct {
	names      []Pattern
	extensions []string
	folders    []Pattern
}

// New builds a Set. Extensions are normalized to lower case with a leading dot.
func New(names []Pattern, extensions []string, folders []Pattern) *Set {
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &Set{
		names:      append([]Pattern(nil), names...),
		extensions: exts,
		folders:    append([]Pattern(nil), folders...),
	}
}

// Names returns a copy of the exact-name patterns.
func (s *Set) Names() []Pattern { return append([]Pattern(nil), s.names...) }

// Extensions returns a copy of the normalized extensions.
func (s *Set) Extensions() []string { return append([]string(nil), s.extensions...) }

// Folders returns a copy of the folder-name patterns.
func (s *Set) Folders() []Pattern { return append([]Pattern(nil), s.folders...) }

// MatchFolder classifies a directory base name.
func (s *Set) MatchFolder(name string) (Rule, bool) {
	if p, ok := first(name, s.folders); ok {
		return Rule{Table: TableFolder, Pattern: p.String()}, true
	}
	return Rule{}, false
}

// MatchFile classifies a regular file base name by exact name, then by
// extension.
func (s *Set) MatchFile(name string) (Rule, bool) {
	if p, ok := first(name, s.names); ok {
		return Rule{Table: TableName, Pattern: p.String()}, true
	}
	ext := strings.ToLower(Ext(name))
	if ext == "" {
		return Rule{}, false
	}
	for _, e := range s.extensions {
		if e == ext {
			return Rule{Table: TableExtension, Pattern: e}, true
		}
	}
	return Rule{}, false
}
