package atlas

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// ErrNoGeometry is returned by Load when the geometry document is missing,
// malformed, or yields no regions.
var ErrNoGeometry = errors.New("atlas: no geometry")

// fallbackAdjacencyChance is the probability of a generated edge between two
// regions of the same group when no adjacency data is available.
const fallbackAdjacencyChance = 0.2

// defaultFill is used for geometry entries with no fill attribute.
var defaultFill = color.RGBA{R: 0xec, G: 0xec, B: 0xec, A: 0xff}

// Sources names the data documents inside the filesystem handed to Load.
// An empty name skips that stage (its fallback is used).
type Sources struct {
	Geometry  string
	Adjacency string
	Pairs     string
	Groupings string
}

// DefaultSources returns the standard data file names.
func DefaultSources() Sources {
	return Sources{
		Geometry:  "world.svg",
		Adjacency: "country_adjacency.json",
		Pairs:     "country_pairs.json",
		Groupings: "countries_by_region.json",
	}
}

// Report summarises what Load found and which stages fell back.
type Report struct {
	Regions           int
	Paths             int
	Edges             int
	AdjacencyFallback bool
	PairsMissing      bool
	GroupingsFallback bool
	DroppedMembers    int
}

// Load reads geometry, adjacency, pairs and groupings from fsys. Only a
// geometry failure is returned as an error; every other stage degrades to
// generated data and is recorded in the report.
func Load(fsys fs.FS, src Sources, opts ...Option) (*Atlas, Report, error) {
	a := newAtlas(opts)
	var rep Report

	regions, err := readGeometry(fsys, src.Geometry)
	if err != nil {
		a.logger.Error("geometry_load_failed", "file", src.Geometry, "err", err)
		return nil, rep, fmt.Errorf("%w: %v", ErrNoGeometry, err)
	}
	for _, r := range regions {
		a.addRegion(r)
		rep.Paths += len(r.Paths)
	}
	if len(a.order) == 0 {
		a.logger.Error("geometry_empty", "file", src.Geometry)
		return nil, rep, fmt.Errorf("%w: %s has no path entries", ErrNoGeometry, src.Geometry)
	}
	rep.Regions = len(a.order)

	if adj, err := readAdjacency(fsys, src.Adjacency); err != nil {
		a.logger.Warn("adjacency_fallback", "file", src.Adjacency, "err", err)
		a.generateAdjacency()
		rep.AdjacencyFallback = true
	} else {
		for name, n := range adj {
			a.addNeighbours(name, n)
		}
	}
	rep.Edges = a.EdgeCount()

	if pairs, err := readPairs(fsys, src.Pairs); err != nil {
		a.logger.Info("pairs_missing", "file", src.Pairs, "err", err)
		rep.PairsMissing = true
	} else {
		a.pairs = pairs
	}

	if order, groups, err := readGroupings(fsys, src.Groupings); err != nil {
		a.logger.Warn("groupings_fallback", "file", src.Groupings, "err", err)
		a.generateGroupings()
		rep.GroupingsFallback = true
	} else {
		for _, g := range order {
			rep.DroppedMembers += a.setGroup(g, groups[g])
		}
		if rep.DroppedMembers > 0 {
			a.logger.Info("grouping_members_dropped", "count", rep.DroppedMembers)
		}
	}
	a.ensureWorld()

	a.logger.Info("atlas_loaded",
		"regions", rep.Regions,
		"paths", rep.Paths,
		"edges", rep.Edges,
		"groups", len(a.groupOrder),
		"pairs", len(a.pairs),
	)
	return a, rep, nil
}

func readFile(fsys fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("no source configured")
	}
	return fs.ReadFile(fsys, name)
}

// readGeometry extracts every <path> element of an SVG document, in
// document order, at any nesting depth.
func readGeometry(fsys fs.FS, name string) ([]*Region, error) {
	f, err := readFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return ParseGeometry(bytes.NewReader(f))
}

// ParseGeometry decodes SVG path entries. Entries sharing a name are returned
// separately; merging happens when they are added to an atlas.
func ParseGeometry(r io.Reader) ([]*Region, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	var out []*Region
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "path" {
			continue
		}
		reg := &Region{Group: unknownGroup, Fill: defaultFill}
		var d string
		for _, at := range se.Attr {
			switch at.Name.Local {
			case "id":
				reg.ID = strings.TrimSpace(at.Value)
			case "name":
				reg.Name = Normalize(at.Value)
			case "class":
				if v := strings.TrimSpace(at.Value); v != "" {
					reg.Group = v
				}
			case "fill":
				if c, ok := ParseColor(at.Value); ok {
					reg.Fill = c
					reg.HasFill = true
				}
			case "d":
				d = strings.TrimSpace(at.Value)
			}
		}
		if d == "" {
			continue
		}
		if reg.Name == "" {
			reg.Name = reg.ID
		}
		if reg.Name == "" {
			reg.Name = unknownGroup
		}
		reg.Paths = []string{d}
		out = append(out, reg)
	}
	return out, nil
}

// ParseColor understands #rgb and #rrggbb. Anything else is rejected.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func readAdjacency(fsys fs.FS, name string) (map[string][]string, error) {
	b, err := readFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Adjacency map[string][]string `json:"adjacency"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode adjacency: %w", err)
	}
	if len(doc.Adjacency) == 0 {
		return nil, errors.New("adjacency document is empty")
	}
	return doc.Adjacency, nil
}

func readPairs(fsys fs.FS, name string) ([]Pair, error) {
	b, err := readFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var doc struct {
		ValidPairs []Pair `json:"validPairs"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode pairs: %w", err)
	}
	if len(doc.ValidPairs) == 0 {
		return nil, errors.New("no valid pairs")
	}
	return doc.ValidPairs, nil
}

// readGroupings decodes {"regions": {group: [names]}} keeping the order in
// which groups appear in the document.
func readGroupings(fsys fs.FS, name string) ([]string, map[string][]string, error) {
	b, err := readFile(fsys, name)
	if err != nil {
		return nil, nil, err
	}
	var doc struct {
		Regions json.RawMessage `json:"regions"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode groupings: %w", err)
	}
	if len(doc.Regions) == 0 {
		return nil, nil, errors.New("groupings document has no regions")
	}
	groups := make(map[string][]string)
	if err := json.Unmarshal(doc.Regions, &groups); err != nil {
		return nil, nil, fmt.Errorf("decode groupings: %w", err)
	}
	order, err := objectKeys(doc.Regions)
	if err != nil {
		return nil, nil, err
	}
	if len(order) == 0 {
		return nil, nil, errors.New("groupings document has no regions")
	}
	return order, groups, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("groupings: regions is not an object")
	}
	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		k, ok := tok.(string)
		if !ok {
			return nil, errors.New("groupings: bad key")
		}
		if !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// generateAdjacency is the last-resort graph: every pair of regions in the
// same known group is linked with a fixed probability.
func (a *Atlas) generateAdjacency() {
	for i, x := range a.order {
		gx := a.regions[x].Group
		if gx == unknownGroup {
			continue
		}
		for _, y := range a.order[i+1:] {
			if a.regions[y].Group != gx {
				continue
			}
			if a.rng.Float64() < fallbackAdjacencyChance {
				a.addNeighbours(x, []string{y})
			}
		}
	}
}

// continentOf buckets a free-form group tag into one of the broad groupings.
func continentOf(tag string) string {
	t := strings.ToLower(tag)
	switch {
	case strings.Contains(t, "europe"):
		return "Europe"
	case strings.Contains(t, "america"), strings.Contains(t, "north"),
		strings.Contains(t, "south"), strings.Contains(t, "caribbean"):
		return "America"
	case strings.Contains(t, "asia"), strings.Contains(t, "middle east"):
		return "Asia"
	case strings.Contains(t, "africa"):
		return "Africa"
	}
	return "Other"
}

func (a *Atlas) generateGroupings() {
	buckets := map[string][]string{}
	for _, name := range a.order {
		c := continentOf(a.regions[name].Group)
		buckets[c] = append(buckets[c], name)
	}
	for _, c := range []string{"Europe", "America", "Asia", "Africa", "Other"} {
		if len(buckets[c]) > 0 {
			a.setGroup(c, buckets[c])
		}
	}
}
