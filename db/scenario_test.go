package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mgillis/stunt/types"
)

// scenarioObject describes one object slot in a validator scenario.
// Scalar relations default to -1; list relations default to empty.
type scenarioObject struct {
	ID       int64 `yaml:"id"`
	Recycled bool  `yaml:"recycled"`

	// legacy (v4) intrusive fields
	Parent   *int64 `yaml:"parent"`
	Child    *int64 `yaml:"child"`
	Sibling  *int64 `yaml:"sibling"`
	Next     *int64 `yaml:"next"`
	Contents *int64 `yaml:"contents"`

	// current-layout fields (contents_list to keep the name distinct
	// from the legacy head pointer)
	Parents      []int64 `yaml:"parents"`
	Children     []int64 `yaml:"children"`
	ContentsList []int64 `yaml:"contents_list"`

	// shared
	Location *int64 `yaml:"location"`
}

// scenarioExpect is a post-validation field assertion
type scenarioExpect struct {
	Object int64   `yaml:"object"`
	Field  string  `yaml:"field"`
	Value  *int64  `yaml:"value"`
	List   []int64 `yaml:"list"`
}

type scenario struct {
	Description string           `yaml:"description"`
	Layout      string           `yaml:"layout"` // "v4" or "current"
	Objects     []scenarioObject `yaml:"objects"`
	Repairable  bool             `yaml:"repairable"`
	Expect      []scenarioExpect `yaml:"expect"`
}

func scalar(p *int64) types.ObjID {
	if p == nil {
		return types.Nothing
	}
	return types.ObjID(*p)
}

func buildScenarioV4(t *testing.T, sc scenario) *StoreV4 {
	t.Helper()
	s := NewStoreV4()
	for _, so := range sc.Objects {
		if so.Recycled {
			s.NewRecycledObject()
			continue
		}
		o := s.NewObject()
		require.Equal(t, types.ObjID(so.ID), o.ID, "objects must be listed in id order")
		o.Parent = scalar(so.Parent)
		o.Child = scalar(so.Child)
		o.Sibling = scalar(so.Sibling)
		o.Location = scalar(so.Location)
		o.Contents = scalar(so.Contents)
		o.Next = scalar(so.Next)
	}
	return s
}

func buildScenarioCurrent(t *testing.T, sc scenario) *Store {
	t.Helper()
	s := NewStore()
	for _, so := range sc.Objects {
		if so.Recycled {
			s.NewRecycledObject()
			continue
		}
		o := s.NewObject()
		require.Equal(t, types.ObjID(so.ID), o.ID, "objects must be listed in id order")
		if so.Parents != nil {
			ids := make([]types.ObjID, len(so.Parents))
			for i, id := range so.Parents {
				ids[i] = types.ObjID(id)
			}
			o.Parents = types.NewObjList(ids)
		} else {
			o.Parents = types.NewObj(scalar(so.Parent))
		}
		childIDs := make([]types.ObjID, len(so.Children))
		for i, id := range so.Children {
			childIDs[i] = types.ObjID(id)
		}
		o.Children = types.NewObjList(childIDs)
		contentIDs := make([]types.ObjID, len(so.ContentsList))
		for i, id := range so.ContentsList {
			contentIDs[i] = types.ObjID(id)
		}
		o.Contents = types.NewObjList(contentIDs)
		o.Location = types.NewObj(scalar(so.Location))
	}
	return s
}

func checkExpectV4(t *testing.T, s *StoreV4, e scenarioExpect) {
	t.Helper()
	o := s.Find(types.ObjID(e.Object))
	require.NotNil(t, o)
	fields := map[string]types.ObjID{
		"parent":   o.Parent,
		"child":    o.Child,
		"sibling":  o.Sibling,
		"location": o.Location,
		"contents": o.Contents,
		"next":     o.Next,
	}
	got, ok := fields[e.Field]
	require.True(t, ok, "unknown field %q", e.Field)
	require.NotNil(t, e.Value, "v4 expectations take a scalar value")
	assert.Equal(t, types.ObjID(*e.Value), got,
		"#%d.%s", e.Object, e.Field)
}

func checkExpectCurrent(t *testing.T, s *Store, e scenarioExpect) {
	t.Helper()
	o := s.Find(types.ObjID(e.Object))
	require.NotNil(t, o)
	fields := map[string]types.Value{
		"parents":  o.Parents,
		"children": o.Children,
		"location": o.Location,
		"contents": o.Contents,
	}
	got, ok := fields[e.Field]
	require.True(t, ok, "unknown field %q", e.Field)
	if e.Value != nil {
		assert.True(t, types.NewObj(types.ObjID(*e.Value)).Equal(got),
			"#%d.%s = %v", e.Object, e.Field, got)
		return
	}
	ids := make([]types.ObjID, len(e.List))
	for i, id := range e.List {
		ids[i] = types.ObjID(id)
	}
	assert.True(t, types.NewObjList(ids).Equal(got),
		"#%d.%s = %v", e.Object, e.Field, got)
}

func TestValidatorScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "validate", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			var sc scenario
			require.NoError(t, yaml.Unmarshal(data, &sc))

			switch sc.Layout {
			case "v4":
				s := buildScenarioV4(t, sc)
				assert.Equal(t, sc.Repairable, validateHierarchiesV4(s), sc.Description)
				if sc.Repairable {
					for _, e := range sc.Expect {
						checkExpectV4(t, s, e)
					}
				}
			case "current":
				s := buildScenarioCurrent(t, sc)
				assert.Equal(t, sc.Repairable, validateHierarchies(s), sc.Description)
				if sc.Repairable {
					for _, e := range sc.Expect {
						checkExpectCurrent(t, s, e)
					}
				}
			default:
				t.Fatalf("unknown layout %q", sc.Layout)
			}
		})
	}
}
