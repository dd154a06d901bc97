package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kinshiphq/kinship/pkg/types"
)

func TestDefault_BuildsWithoutError(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("default catalog is empty")
	}
}

// Every reverse key declared by the built-in catalog must itself be a catalog
// entry, otherwise a created pair could carry an unknown type.
func TestDefault_ReverseKeysAreClosed(t *testing.T) {
	c := Default()
	for _, entry := range c.Types() {
		switch entry.Reverse.Kind {
		case ReverseSymmetric:
			if !c.Has(entry.Reverse.Key) {
				t.Errorf("type %q reverses to unknown key %q", entry.Key, entry.Reverse.Key)
			}
		case ReverseGendered:
			for gender, key := range entry.Reverse.ByGender {
				if !c.Has(key) {
					t.Errorf("type %q (%s) reverses to unknown key %q", entry.Key, gender, key)
				}
			}
			if !c.Has(entry.Reverse.Fallback) {
				t.Errorf("type %q fallback is unknown key %q", entry.Key, entry.Reverse.Fallback)
			}
		default:
			t.Errorf("type %q has unknown reverse kind %q", entry.Key, entry.Reverse.Kind)
		}
	}
}

func TestResolveReverse_Gendered(t *testing.T) {
	c := Default()
	entry, ok := c.Lookup(types.RelParent)
	if !ok {
		t.Fatal("parent missing from default catalog")
	}

	tests := []struct {
		gender       types.Gender
		want         string
		wantResolved bool
	}{
		{types.GenderMale, types.RelSon, true},
		{types.GenderFemale, types.RelDaughter, true},
		{types.GenderUnknown, types.RelChild, true},
	}
	for _, tt := range tests {
		res := ResolveReverse(entry, tt.gender)
		if res.Key != tt.want {
			t.Errorf("ResolveReverse(parent, %q) = %q, want %q", tt.gender, res.Key, tt.want)
		}
		if res.GenderResolved != tt.wantResolved {
			t.Errorf("ResolveReverse(parent, %q) GenderResolved = %v, want %v",
				tt.gender, res.GenderResolved, tt.wantResolved)
		}
	}
}

func TestResolveReverse_Symmetric(t *testing.T) {
	c := Default()
	entry, _ := c.Lookup(types.RelManager)

	res := ResolveReverse(entry, types.GenderFemale)
	if res.Key != types.RelEmployee {
		t.Errorf("ResolveReverse(manager) = %q, want %q", res.Key, types.RelEmployee)
	}
	if res.GenderResolved {
		t.Error("symmetric resolution must not be marked gender-resolved")
	}
}

func TestNew_RejectsDuplicatesAndBadCategories(t *testing.T) {
	_, err := New([]RelationshipType{
		{Key: "friend", Category: types.CategorySocial, Reverse: symmetric("friend")},
		{Key: "friend", Category: types.CategorySocial, Reverse: symmetric("friend")},
	})
	if err == nil {
		t.Error("expected error for duplicate key")
	}

	_, err = New([]RelationshipType{
		{Key: "rival", Category: "nemesis", Reverse: symmetric("rival")},
	})
	if err == nil {
		t.Error("expected error for unknown category")
	}

	_, err = New([]RelationshipType{
		{Key: "", Category: types.CategorySocial, Reverse: symmetric("x")},
	})
	if err == nil {
		t.Error("expected error for empty key")
	}
}

func TestMerge_ReplacesInPlaceAndAppends(t *testing.T) {
	base := []RelationshipType{
		{Key: "friend", Category: types.CategorySocial, DisplayName: "Friend", Reverse: symmetric("friend")},
		{Key: "mentor", Category: types.CategoryProfessional, DisplayName: "Mentor", Reverse: symmetric("mentee")},
		{Key: "mentee", Category: types.CategoryProfessional, DisplayName: "Mentee", Reverse: symmetric("mentor")},
	}
	overrides := []RelationshipType{
		{Key: "friend", Category: types.CategorySocial, DisplayName: "Buddy", Reverse: symmetric("friend")},
		{Key: "bandmate", Category: types.CategorySocial, DisplayName: "Bandmate", Reverse: symmetric("bandmate")},
	}

	c, err := Merge(base, overrides)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if got := c.Len(); got != 4 {
		t.Errorf("merged catalog has %d entries, want 4", got)
	}

	// Replaced entry keeps its original position.
	order := c.Types()
	if order[0].Key != "friend" || order[0].DisplayName != "Buddy" {
		t.Errorf("override did not replace in place: got %q/%q", order[0].Key, order[0].DisplayName)
	}
	// New keys append after the base entries.
	if order[3].Key != "bandmate" {
		t.Errorf("appended entry in wrong position: got %q", order[3].Key)
	}
}

func TestLoadFile_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	yaml := `
types:
  - key: friend
    category: social
    display_name: Pal
    reverse:
      kind: symmetric
      key: friend
  - key: godparent
    category: family
    display_name: Godparent
    reverse:
      kind: gendered
      by_gender:
        male: godson
        female: goddaughter
      fallback: godchild
  - key: godson
    category: family
    display_name: Godson
    reverse:
      kind: symmetric
      key: godparent
  - key: goddaughter
    category: family
    display_name: Goddaughter
    reverse:
      kind: symmetric
      key: godparent
  - key: godchild
    category: family
    display_name: Godchild
    reverse:
      kind: symmetric
      key: godparent
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	entry, ok := c.Lookup("friend")
	if !ok || entry.DisplayName != "Pal" {
		t.Errorf("friend override not applied: %+v", entry)
	}

	god, ok := c.Lookup("godparent")
	if !ok {
		t.Fatal("appended type godparent missing")
	}
	res := ResolveReverse(god, types.GenderFemale)
	if res.Key != "goddaughter" || !res.GenderResolved {
		t.Errorf("godparent reverse = %+v, want goddaughter (gender-resolved)", res)
	}

	// Built-in types survive untouched.
	if !c.Has(types.RelSpouse) {
		t.Error("built-in type lost during merge")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTypesByCategory_PreservesDeclarationOrder(t *testing.T) {
	c := Default()
	social := c.TypesByCategory(types.CategorySocial)
	if len(social) == 0 {
		t.Fatal("no social types in default catalog")
	}
	if social[0].Key != types.RelFriend {
		t.Errorf("first social type = %q, want %q", social[0].Key, types.RelFriend)
	}
	for _, e := range social {
		if e.Category != types.CategorySocial {
			t.Errorf("type %q has category %q in the social listing", e.Key, e.Category)
		}
	}
}

func TestStore_ReplaceSwapsCatalog(t *testing.T) {
	store := NewStore(Default())
	before := store.Current().Len()

	c, err := New([]RelationshipType{
		{Key: "friend", Category: types.CategorySocial, Reverse: symmetric("friend")},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	store.Replace(c)

	if got := store.Current().Len(); got != 1 {
		t.Errorf("store holds %d types after replace, want 1 (had %d)", got, before)
	}
}
