package grouping

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familymeter/internal/config"
	apperrors "familymeter/internal/errors"
	"familymeter/internal/family"
)

func newDefaultGrouper(t *testing.T) *Grouper {
	t.Helper()
	reg, err := NewRegistry(config.DefaultGroups())
	require.NoError(t, err)
	return NewGrouper(reg)
}

func person(first, last, sex, lineage string, obs ...family.Observation) family.Person {
	return family.Person{
		FirstName:    first,
		LastName:     last,
		Sex:          sex,
		Lineage:      lineage,
		BirthDate:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Observations: obs,
	}
}

func seriesNames(g *Group) []string {
	names := make([]string, 0, len(g.Series))
	for _, s := range g.Series {
		names = append(names, s.Name)
	}
	return names
}

func TestGrouper_Group(t *testing.T) {
	people := []family.Person{
		person("Anna", "Nováková", "žena", "Elena", family.Observation{Age: 10, Height: 140}),
		person("Peter", "Novák", "muž", "Jozef", family.Observation{Age: 3, Height: 95}),
	}

	res, err := newDefaultGrouper(t).Group(people)
	require.NoError(t, err)
	require.Len(t, res.Groups, 8)

	want := map[string][]string{
		"all":     {"Anna Nováková", "Peter Novák"},
		"female":  {"Anna Nováková"},
		"male":    {"Peter Novák"},
		"Elena":   {"Anna Nováková"},
		"Štefan":  {},
		"Jozef":   {"Peter Novák"},
		"Miro":    {},
		"Mariena": {},
	}
	for key, names := range want {
		g, ok := res.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, names, seriesNames(g), key)
	}

	keys := make([]string, 0, len(res.Groups))
	for _, g := range res.Groups {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"all", "female", "male", "Elena", "Štefan", "Jozef", "Miro", "Mariena"}, keys)
}

func TestGrouper_EachPersonInThreeGroups(t *testing.T) {
	people := []family.Person{
		person("A", "One", "female", "Miro"),
		person("B", "Two", "muž", "Mariena"),
		person("C", "Three", "žena", "Štefan"),
	}

	res, err := newDefaultGrouper(t).Group(people)
	require.NoError(t, err)

	for _, p := range people {
		count := 0
		for _, g := range res.Groups {
			for _, s := range g.Series {
				if s.Name == p.DisplayName() {
					count++
				}
			}
		}
		assert.Equal(t, 3, count, p.DisplayName())
	}
}

func TestGrouper_PreservesPersonOrder(t *testing.T) {
	people := []family.Person{
		person("Z", "Last", "žena", "Elena"),
		person("A", "First", "žena", "Elena"),
		person("M", "Middle", "žena", "Elena"),
	}

	res, err := newDefaultGrouper(t).Group(people)
	require.NoError(t, err)

	g, _ := res.Get("Elena")
	assert.Equal(t, []string{"Z Last", "A First", "M Middle"}, seriesNames(g))
}

func TestNewSeries_SortsByAgeStably(t *testing.T) {
	p := person("Anna", "Nováková", "žena", "Elena",
		family.Observation{Age: 10, Height: 140},
		family.Observation{Age: 2.5, Height: 90},
		family.Observation{Age: 5, Height: 110},
		family.Observation{Age: 2.5, Height: 91},
	)

	s := NewSeries(p)
	assert.Equal(t, "Anna Nováková", s.Name)
	assert.Equal(t, []float64{2.5, 2.5, 5, 10}, s.Ages)
	assert.Equal(t, []float64{90, 91, 110, 140}, s.Heights)
	assert.Equal(t, 4, s.Len())

	assert.Equal(t, 10.0, p.Observations[0].Age, "input must not be reordered")
}

func TestGrouper_UnknownValues(t *testing.T) {
	tests := []struct {
		name   string
		person family.Person
		kind   string
	}{
		{"unknown sex", person("A", "B", "iné", "Elena"), "sex"},
		{"unknown lineage", person("A", "B", "žena", "Bratislava"), "lineage"},
		{"title is not a key", person("A", "B", "žena", "Ženy"), "lineage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newDefaultGrouper(t).Group([]family.Person{tt.person})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrUnknownGroup))
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.kind, appErr.Context["kind"])
			assert.Equal(t, "A B", appErr.Context["person"])
		})
	}
}

func TestGrouper_SharedMembership(t *testing.T) {
	tests := []struct {
		name   string
		person family.Person
		want   []string
	}{
		{
			name:   "lineage names a sex group",
			person: person("Jana", "Malá", "žena", "muž"),
			want:   []string{"all", "female", "male"},
		},
		{
			name:   "lineage names the same sex group",
			person: person("Ivan", "Malý", "muž", "male"),
			want:   []string{"all", "male", "male"},
		},
		{
			name:   "sex names a lineage group",
			person: person("Eva", "Malá", "Elena", "Jozef"),
			want:   []string{"all", "Elena", "Jozef"},
		},
		{
			name:   "lineage names the all group",
			person: person("Ola", "Malá", "žena", "all"),
			want:   []string{"all", "all", "female"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newDefaultGrouper(t).Group([]family.Person{tt.person})
			require.NoError(t, err)

			var got []string
			for _, g := range res.Groups {
				for _, s := range g.Series {
					if s.Name == tt.person.DisplayName() {
						got = append(got, g.Key)
					}
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrouper_SharedMembershipKeepsOrder(t *testing.T) {
	people := []family.Person{
		person("Peter", "Novák", "muž", "Jozef"),
		person("Jana", "Malá", "žena", "muž"),
		person("Ivan", "Malý", "muž", "Miro"),
	}

	res, err := newDefaultGrouper(t).Group(people)
	require.NoError(t, err)

	male, _ := res.Get("male")
	assert.Equal(t, []string{"Peter Novák", "Jana Malá", "Ivan Malý"}, seriesNames(male))
	all, _ := res.Get("all")
	assert.Equal(t, []string{"Peter Novák", "Jana Malá", "Ivan Malý"}, seriesNames(all))
}

func TestGrouper_Idempotent(t *testing.T) {
	people := []family.Person{
		person("Anna", "Nováková", "žena", "Elena", family.Observation{Age: 10, Height: 140}, family.Observation{Age: 5, Height: 110}),
		person("Peter", "Novák", "muž", "Jozef", family.Observation{Age: 3, Height: 95}),
	}
	g := newDefaultGrouper(t)

	first, err := g.Group(people)
	require.NoError(t, err)
	second, err := g.Group(people)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGrouper_NoPeople(t *testing.T) {
	res, err := newDefaultGrouper(t).Group(nil)
	require.NoError(t, err)
	require.Len(t, res.Groups, 8)
	for _, g := range res.Groups {
		assert.Empty(t, g.Series)
		assert.Zero(t, g.Observations())
	}
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name    string
		groups  []config.GroupConfig
		wantErr string
	}{
		{
			name:   "defaults",
			groups: config.DefaultGroups(),
		},
		{
			name:    "missing all",
			groups:  []config.GroupConfig{{Key: "f", Title: "F", Kind: "sex"}},
			wantErr: "no group of kind all",
		},
		{
			name: "two all groups",
			groups: []config.GroupConfig{
				{Key: "a", Title: "A", Kind: "all"},
				{Key: "b", Title: "B", Kind: "all"},
			},
			wantErr: "more than one group of kind all",
		},
		{
			name: "duplicate key",
			groups: []config.GroupConfig{
				{Key: "all", Title: "All", Kind: "all"},
				{Key: "x", Title: "X", Kind: "sex"},
				{Key: "x", Title: "X", Kind: "lineage"},
			},
			wantErr: "declared twice",
		},
		{
			name: "alias shared by two groups",
			groups: []config.GroupConfig{
				{Key: "all", Title: "All", Kind: "all"},
				{Key: "f", Title: "F", Kind: "sex", Aliases: []string{"z"}},
				{Key: "m", Title: "M", Kind: "sex", Aliases: []string{"z"}},
			},
			wantErr: "more than one group",
		},
		{
			name: "unknown kind",
			groups: []config.GroupConfig{
				{Key: "all", Title: "All", Kind: "all"},
				{Key: "n", Title: "N", Kind: "branch"},
			},
			wantErr: "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.groups)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Len(t, reg.Definitions(), len(tt.groups))
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := NewRegistry(config.DefaultGroups())
	require.NoError(t, err)

	def, ok := reg.Lookup("female")
	require.True(t, ok)
	assert.Equal(t, "Ženy", def.Title)
	assert.Equal(t, KindSex, def.Kind)

	_, ok = reg.Lookup("žena")
	assert.False(t, ok, "aliases are not group keys")
}
