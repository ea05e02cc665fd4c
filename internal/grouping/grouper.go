package grouping

import (
	"sort"

	"familymeter/internal/family"
)

// Series is one person's heights ordered by age.
type Series struct {
	Name    string    `json:"name"`
	Ages    []float64 `json:"ages"`
	Heights []float64 `json:"heights"`
}

// Len returns the number of points in the series.
func (s Series) Len() int {
	return len(s.Ages)
}

// Group is a titled set of series drawn on one chart.
type Group struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Kind   Kind     `json:"kind"`
	Series []Series `json:"series"`
}

// Observations counts the points across all series of the group.
func (g *Group) Observations() int {
	n := 0
	for _, s := range g.Series {
		n += s.Len()
	}
	return n
}

// Result holds every registry group in display order, including empty ones.
type Result struct {
	Groups []*Group `json:"groups"`
}

// Get returns the group with the given key.
func (r *Result) Get(key string) (*Group, bool) {
	for _, g := range r.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return nil, false
}

// Grouper assigns people to registry groups.
type Grouper struct {
	registry *Registry
}

// NewGrouper creates a grouper over the registry.
func NewGrouper(registry *Registry) *Grouper {
	return &Grouper{registry: registry}
}

// Group adds each person's series to the "all" group, to its sex group and to
// its lineage group. Series keep the order of people. A sex or lineage value
// without a matching group fails the whole call.
func (g *Grouper) Group(people []family.Person) (*Result, error) {
	res := &Result{Groups: make([]*Group, len(g.registry.defs))}
	for i, d := range g.registry.defs {
		res.Groups[i] = &Group{Key: d.Key, Title: d.Title, Kind: d.Kind, Series: []Series{}}
	}

	for _, p := range people {
		sex, err := g.registry.resolve(KindSex, p.Sex)
		if err != nil {
			return nil, err.WithContext("person", p.DisplayName())
		}
		lineage, err := g.registry.resolve(KindLineage, p.Lineage)
		if err != nil {
			return nil, err.WithContext("person", p.DisplayName())
		}

		s := NewSeries(p)
		for _, i := range []int{g.registry.all, sex, lineage} {
			res.Groups[i].Series = append(res.Groups[i].Series, s)
		}
	}

	return res, nil
}

// NewSeries converts a person's observations into an age-ordered series.
// Observations with equal ages keep their column order.
func NewSeries(p family.Person) Series {
	obs := make([]family.Observation, len(p.Observations))
	copy(obs, p.Observations)
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Age < obs[j].Age })

	s := Series{
		Name:    p.DisplayName(),
		Ages:    make([]float64, len(obs)),
		Heights: make([]float64, len(obs)),
	}
	for i, o := range obs {
		s.Ages[i] = o.Age
		s.Heights[i] = o.Height
	}
	return s
}
