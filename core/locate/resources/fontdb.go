package resources

import (
	"strings"

	"github.com/derekparker/trie"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/core/font/fontregistry"
	"golang.org/x/exp/slices"
	xfont "golang.org/x/image/font"
)

// Query is a font query, as produced by parsing a font pattern.
// An empty family selects the database's default family.
type Query struct {
	Family    string
	Style     xfont.Style
	Weight    xfont.Weight
	PixelSize float64
}

// Match is the result of a database lookup.
// Family is the family name as the font database knows it, which may differ
// in case from the query.
type Match struct {
	Family     string
	Path       string
	Variant    string
	Confidence fontregistry.MatchConfidence
}

type familyEntry struct {
	name  string // display name
	descs []font.Descriptor
}

// Database is an in-memory font database. Families are looked up
// case-insensitively. A database is read-only after creation and may be
// shared between goroutines.
type Database struct {
	families      *treemap.Map // lower-case family name → *familyEntry
	prefixes      *trie.Trie   // lower-case family names, for completion
	defaultFamily string
	aliases       map[string]string
}

// generic family names mapped to the default family
var genericFamilies = []string{"sans", "sans-serif", "serif", "monospace", "mono"}

// NewDatabase creates a font database from a list of font descriptors.
// The embedded Go font is always present as family "Go". If defaultFamily
// is empty or unknown, "Go" serves as the default family.
func NewDatabase(descs []font.Descriptor, defaultFamily string) *Database {
	db := &Database{
		families: treemap.NewWithStringComparator(),
		prefixes: trie.New(),
		aliases:  make(map[string]string),
	}
	for _, d := range descs {
		db.add(d)
	}
	if _, ok := db.families.Get(strings.ToLower(font.FallbackFontFamily)); !ok {
		db.add(font.Descriptor{
			Family:   font.FallbackFontFamily,
			Path:     font.FallbackFontPath,
			Variants: []string{"regular"},
		})
	}
	db.defaultFamily = font.FallbackFontFamily
	if defaultFamily != "" {
		if _, ok := db.families.Get(strings.ToLower(defaultFamily)); ok {
			db.defaultFamily = defaultFamily
		} else {
			tracer().Infof("default font family %q unknown, using %q", defaultFamily, db.defaultFamily)
		}
	}
	for _, g := range genericFamilies {
		if _, ok := db.families.Get(g); !ok {
			db.aliases[g] = db.defaultFamily
		}
	}
	tracer().Debugf("font database holds %d families", db.families.Size())
	return db
}

func (db *Database) add(d font.Descriptor) {
	if d.Family == "" || d.Path == "" {
		return
	}
	key := strings.ToLower(d.Family)
	if e, ok := db.families.Get(key); ok {
		entry := e.(*familyEntry)
		entry.descs = append(entry.descs, d)
		return
	}
	db.families.Put(key, &familyEntry{name: d.Family, descs: []font.Descriptor{d}})
	db.prefixes.Add(key, d.Family)
}

// DefaultFamily returns the family used for queries without a family or with
// an unknown one.
func (db *Database) DefaultFamily() string {
	return db.defaultFamily
}

// Families returns the display names of all families, sorted
// case-insensitively.
func (db *Database) Families() []string {
	names := make([]string, 0, db.families.Size())
	for _, e := range db.families.Values() {
		names = append(names, e.(*familyEntry).name)
	}
	return names
}

// Suggest returns the display names of all families starting with prefix
// (case-insensitive), ordered like Families.
func (db *Database) Suggest(prefix string) []string {
	keys := db.prefixes.PrefixSearch(strings.ToLower(prefix))
	slices.Sort(keys)
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if node, ok := db.prefixes.Find(k); ok {
			names = append(names, node.Meta().(string))
		}
	}
	return names
}

// Match finds the font file which fits a query best.
//
// If the queried family is known, its best variant is returned. Otherwise the
// default family is substituted, as fontconfig does. Match returns false
// only if no font at all can be found.
func (db *Database) Match(q Query) (Match, bool) {
	family := strings.ToLower(q.Family)
	if alias, ok := db.aliases[family]; ok {
		family = strings.ToLower(alias)
	}
	if family != "" {
		if m, ok := db.matchFamily(family, q); ok {
			return m, true
		}
		tracer().Debugf("font family %q not in database, substituting %q", q.Family, db.defaultFamily)
	}
	if m, ok := db.matchFamily(strings.ToLower(db.defaultFamily), q); ok {
		return m, true
	}
	return db.matchFamily(strings.ToLower(font.FallbackFontFamily), q)
}

func (db *Database) matchFamily(key string, q Query) (Match, bool) {
	e, ok := db.families.Get(key)
	if !ok {
		return Match{}, false
	}
	entry := e.(*familyEntry)
	desc, variant, confidence := fontregistry.ClosestMatch(entry.descs, key, q.Style, q.Weight)
	if confidence == fontregistry.NoConfidence {
		desc = entry.descs[0]
		if len(desc.Variants) > 0 {
			variant = desc.Variants[0]
		}
	}
	return Match{
		Family:     entry.name,
		Path:       desc.Path,
		Variant:    variant,
		Confidence: confidence,
	}, true
}
