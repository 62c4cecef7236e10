package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matsen/papercat/internal/spreadsheet"
)

// MinYear is the earliest accepted publication year.
const MinYear = 1500

const groupPrefix = "DocumentGroup_"

// Configuration is a parsed import configuration file.
type Configuration struct {
	Source string
	Venue  string // venue abbreviation
	Year   int
	Groups []DocumentGroup // in file order
}

// DocumentGroup maps article fields to their sources for one set of rows.
type DocumentGroup struct {
	Name  string
	Index int

	Title        Source
	Abstract     Source
	ContentDirs  []string
	Priority     Source
	DownloadedAs Source
	ArticleType  Source
	Category     Source
	SummaryTitle Source
	SummaryText  Source
	IsRead       Source

	// AbstractsReader and AbstractsFile come from AbstractsFileReader,
	// written reader("file").
	AbstractsReader string
	AbstractsFile   string

	// Extractor names the document extractor; empty means none.
	Extractor string
}

// Registry reports which abstract readers and document extractors exist.
type Registry interface {
	HasAbstractReader(name string) bool
	HasExtractor(name string) bool
}

// Parser reads import configurations. A nil Registry accepts any reader
// and extractor name.
type Parser struct {
	Registry Registry
}

// Load parses the configuration in filename. Relative paths inside it are
// resolved against the file's directory.
func (p Parser) Load(filename string) (*Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &Error{Source: filename, Details: err.Error()}
	}
	return p.parse(data, filename, filepath.Dir(filename))
}

// Parse parses configuration text. source names it in errors and may be
// empty.
func (p Parser) Parse(data []byte, source string) (*Configuration, error) {
	return p.parse(data, source, "")
}

var abstractsSpecPattern = regexp.MustCompile(`^([A-Za-z0-9_]+)\("([^"]+)"\)$`)

var groupKeys = []string{
	"Title", "Abstract", "ContentDir", "Priority", "DownloadedAs",
	"ArticleType", "Category", "SummaryTitle", "SummaryText", "IsRead",
	"AbstractsFileReader", "Extractor", "ArticleExtractor",
}

type parseState struct {
	source   string
	baseDir  string
	registry Registry
}

type entry struct {
	key  string
	node *yaml.Node
}

// fieldRule lists the value forms a field accepts.
type fieldRule struct {
	required  bool
	paths     bool
	constants bool
	only      []string // when set, the only constants accepted
	integer   bool
}

func (p Parser) parse(data []byte, source, baseDir string) (*Configuration, error) {
	st := &parseState{source: source, baseDir: baseDir, registry: p.Registry}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, st.errorf("", "invalid YAML: %v", err)
	}

	var entries []entry
	if len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return nil, st.errorf("", "configuration must be a mapping of parameters")
		}
		var err error
		if entries, err = st.entries(root, ""); err != nil {
			return nil, err
		}
	}
	params := index(entries)

	cfg := &Configuration{Source: source}
	venue, err := st.field(params, "", "Venue", fieldRule{required: true, constants: true})
	if err != nil {
		return nil, err
	}
	cfg.Venue = venue.Constant

	year, err := st.field(params, "", "Year", fieldRule{required: true, constants: true, integer: true})
	if err != nil {
		return nil, err
	}
	cfg.Year, _ = strconv.Atoi(year.Constant)
	if cfg.Year < MinYear {
		return nil, st.errorf("Year", "Year must be >= %d", MinYear)
	}

	seen := make(map[int]bool)
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.key, groupPrefix):
			idx, err := strconv.Atoi(e.key[len(groupPrefix):])
			if err != nil || idx < 1 {
				return nil, st.errorf(e.key, "Invalid document group index")
			}
			if seen[idx] {
				return nil, st.errorf(e.key, "Duplicate document group %d", idx)
			}
			seen[idx] = true

			group, err := st.group(e.key, idx, e.node)
			if err != nil {
				return nil, err
			}
			cfg.Groups = append(cfg.Groups, *group)
		case e.key == "Venue" || e.key == "Year":
		default:
			return nil, st.errorf(e.key, "Unknown configuration file parameter %q", e.key)
		}
	}

	return cfg, nil
}

func (st *parseState) group(name string, idx int, node *yaml.Node) (*DocumentGroup, error) {
	if node.Kind != yaml.MappingNode {
		return nil, st.errorf(name, "%s must be a mapping of parameters", name)
	}
	entries, err := st.entries(node, name)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !slices.Contains(groupKeys, e.key) {
			return nil, st.errorf(qualified(name, e.key), "Unknown parameter %q in %s", e.key, name)
		}
	}
	params := index(entries)

	g := &DocumentGroup{Name: name, Index: idx}
	fields := []struct {
		key  string
		dst  *Source
		rule fieldRule
	}{
		{"Title", &g.Title, fieldRule{required: true, paths: true, constants: true, only: []string{extractedToken}}},
		{"Abstract", &g.Abstract, fieldRule{paths: true, constants: true, only: []string{fileToken, extractedToken}}},
		{"Priority", &g.Priority, fieldRule{paths: true, constants: true, integer: true}},
		{"DownloadedAs", &g.DownloadedAs, fieldRule{required: true, paths: true}},
		{"ArticleType", &g.ArticleType, fieldRule{paths: true, constants: true}},
		{"Category", &g.Category, fieldRule{paths: true, constants: true}},
		{"SummaryTitle", &g.SummaryTitle, fieldRule{paths: true, constants: true, only: []string{extractedToken}}},
		{"SummaryText", &g.SummaryText, fieldRule{paths: true}},
		{"IsRead", &g.IsRead, fieldRule{paths: true, constants: true}},
	}
	for _, f := range fields {
		if f.key == "DownloadedAs" {
			// ContentDir is checked between Abstract and DownloadedAs.
			if g.ContentDirs, err = st.contentDirs(params, name); err != nil {
				return nil, err
			}
		}
		if *f.dst, err = st.field(params, name, f.key, f.rule); err != nil {
			return nil, err
		}
	}

	if err := st.abstractsSpec(params, g); err != nil {
		return nil, err
	}
	if err := st.extractor(params, g); err != nil {
		return nil, err
	}
	if err := st.crossCheck(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (st *parseState) crossCheck(g *DocumentGroup) error {
	if g.Abstract.Kind == SourceFile && g.AbstractsReader == "" {
		return st.errorf(qualified(g.Name, "AbstractsFileReader"),
			"In %s, the Abstract comes from a file, so AbstractsFileReader is required", g.Name)
	}

	switch {
	case !g.SummaryTitle.IsSet():
		if g.SummaryText.IsSet() {
			return st.errorf(qualified(g.Name, "SummaryTitle"), "Required parameter SummaryTitle missing in %s", g.Name)
		}
	case !g.SummaryText.IsSet():
		return st.errorf(qualified(g.Name, "SummaryText"), "Required parameter SummaryText missing in %s", g.Name)
	case g.SummaryTitle.Kind == SourceExtracted && g.Title.Kind != SourceExtracted:
		return st.errorf(qualified(g.Name, "SummaryTitle"),
			`In %s, the SummaryTitle is "extracted," so the Title must be "extracted" as well.`, g.Name)
	case g.SummaryTitle.Kind == SourceSpreadsheet && g.Title.Kind != SourceSpreadsheet:
		return st.errorf(qualified(g.Name, "SummaryTitle"),
			"In %s, the SummaryTitle is taken from a spreadsheet, so the Title must also come from a spreadsheet", g.Name)
	}
	return nil
}

func (st *parseState) contentDirs(params map[string]*yaml.Node, group string) ([]string, error) {
	name := qualified(group, "ContentDir")
	node, ok := params["ContentDir"]
	if !ok || isNull(node) {
		return nil, st.errorf(name, "Required parameter %q is missing", name)
	}

	var items []*yaml.Node
	switch node.Kind {
	case yaml.ScalarNode:
		items = []*yaml.Node{node}
	case yaml.SequenceNode:
		items = node.Content
	default:
		return nil, st.errorf(name, "A %s is not a legal value for %s", kindName(node), name)
	}
	if len(items) == 0 {
		return nil, st.errorf(name, "Required parameter %q is missing", name)
	}

	dirs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Kind != yaml.ScalarNode {
			return nil, st.errorf(name, "A %s is not a legal value for %s", kindName(item), name)
		}
		dir := strings.TrimSpace(item.Value)
		if dir == "" {
			return nil, st.errorf(name, "Required parameter %q is missing", name)
		}
		if strings.HasPrefix(dir, "@") {
			return nil, st.errorf(name, "A spreadsheet path is not a legal value for %s", name)
		}
		dirs = append(dirs, st.resolve(dir))
	}
	return dirs, nil
}

func (st *parseState) abstractsSpec(params map[string]*yaml.Node, g *DocumentGroup) error {
	name := qualified(g.Name, "AbstractsFileReader")
	value, ok, err := st.scalar(params, "AbstractsFileReader", name)
	if err != nil || !ok {
		return err
	}
	m := abstractsSpecPattern.FindStringSubmatch(value)
	if m == nil {
		return st.errorf(name, "In %s, the value for AbstractsFileReader is invalid", g.Name)
	}
	if st.registry != nil && !st.registry.HasAbstractReader(m[1]) {
		return st.errorf(name, "In %s, unknown abstracts file reader %q", g.Name, m[1])
	}
	g.AbstractsReader = m[1]
	g.AbstractsFile = st.resolve(m[2])
	return nil
}

func (st *parseState) extractor(params map[string]*yaml.Node, g *DocumentGroup) error {
	key := "Extractor"
	if _, ok := params["ArticleExtractor"]; ok {
		if _, both := params["Extractor"]; both {
			return st.errorf(qualified(g.Name, "Extractor"), "In %s, Extractor and ArticleExtractor are both given", g.Name)
		}
		key = "ArticleExtractor"
	}
	src, err := st.field(params, g.Name, key, fieldRule{constants: true})
	if err != nil || !src.IsSet() {
		return err
	}
	if st.registry != nil && !st.registry.HasExtractor(src.Constant) {
		return st.errorf(qualified(g.Name, key), "In %s, unknown article extractor %q", g.Name, src.Constant)
	}
	g.Extractor = src.Constant
	return nil
}

// field parses params[key] according to r.
func (st *parseState) field(params map[string]*yaml.Node, group, key string, r fieldRule) (Source, error) {
	name := qualified(group, key)
	value, ok, err := st.scalar(params, key, name)
	if err != nil {
		return Source{}, err
	}
	if !ok {
		if r.required {
			return Source{}, st.errorf(name, "Required parameter %q is missing", name)
		}
		return Source{}, nil
	}

	if strings.HasPrefix(value, "@") {
		if !r.paths {
			return Source{}, st.errorf(name, "A spreadsheet path is not a legal value for %s", name)
		}
		path, err := spreadsheet.ParsePath(value)
		if err != nil {
			return Source{}, st.errorf(name, "%s has invalid spreadsheet path [%s]", name, value)
		}
		return Source{Kind: SourceSpreadsheet, Path: path}, nil
	}

	if !r.constants {
		return Source{}, st.errorf(name, "A constant is not a legal value for %s", name)
	}
	if len(r.only) > 0 {
		switch {
		case !slices.Contains(r.only, value):
			return Source{}, st.errorf(name, "%q is not a legal value for %s", value, name)
		case value == extractedToken:
			return Source{Kind: SourceExtracted}, nil
		case value == fileToken:
			return Source{Kind: SourceFile}, nil
		}
	}
	if r.integer {
		if _, err := strconv.Atoi(value); err != nil {
			return Source{}, st.errorf(name, "Value for %q must be an integer", name)
		}
	}
	return Source{Kind: SourceConstant, Constant: value}, nil
}

// scalar returns the trimmed text of params[key]. ok is false when the key
// is absent, null or blank.
func (st *parseState) scalar(params map[string]*yaml.Node, key, name string) (string, bool, error) {
	node, present := params[key]
	if !present || isNull(node) {
		return "", false, nil
	}
	if node.Kind != yaml.ScalarNode {
		return "", false, st.errorf(name, "A %s is not a legal value for %s", kindName(node), name)
	}
	value := strings.TrimSpace(node.Value)
	return value, value != "", nil
}

func (st *parseState) entries(node *yaml.Node, parent string) ([]entry, error) {
	out := make([]entry, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if seen[key] {
			return nil, st.errorf(qualified(parent, key), "Duplicate parameter %q", qualified(parent, key))
		}
		seen[key] = true
		out = append(out, entry{key: key, node: node.Content[i+1]})
	}
	return out, nil
}

func (st *parseState) resolve(path string) string {
	path = ExpandPath(path)
	if st.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(st.baseDir, path)
}

func (st *parseState) errorf(field, format string, args ...any) *Error {
	return &Error{Source: st.source, Field: field, Details: fmt.Sprintf(format, args...)}
}

func index(entries []entry) map[string]*yaml.Node {
	m := make(map[string]*yaml.Node, len(entries))
	for _, e := range entries {
		m[e.key] = e.node
	}
	return m
}

func qualified(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	default:
		return "value"
	}
}
