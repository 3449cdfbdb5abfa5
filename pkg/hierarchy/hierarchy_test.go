package hierarchy

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/re3facet/pkg/registry"
	"github.com/matzehuels/re3facet/pkg/subject"
)

func philologyRows() []Row {
	return []Row{
		{Hierarchy: []string{"1", "1-01", "1-01-02"}, Description: "Classical Philology", Count: 3},
		{Hierarchy: []string{"1", "1-01", "1-01-01"}, Description: "Prehistory", Count: 1},
		{Hierarchy: []string{"2", "2-01"}, Description: "Basic Research in Biology", Count: 2},
	}
}

func TestAssembleSharesAncestors(t *testing.T) {
	root := Assemble(philologyRows())

	if root.Len() != 2 {
		t.Fatalf("root children = %d, want 2", root.Len())
	}
	one, ok := root.Child("1")
	if !ok {
		t.Fatal("missing node 1")
	}
	if one.Len() != 1 {
		t.Errorf("node 1 children = %d, want exactly one shared 1-01", one.Len())
	}
	mid, _ := one.Child("1-01")
	if mid.Len() != 2 {
		t.Errorf("node 1-01 children = %d, want 2", mid.Len())
	}
	if root.Size() != 6 {
		t.Errorf("Size() = %d, want 6", root.Size())
	}
}

func TestAssemblePlaceholders(t *testing.T) {
	root := Assemble(philologyRows())
	one, _ := root.Child("1")
	if !one.IsPlaceholder() || one.Label != "" || one.Value != "" {
		t.Errorf("intermediate node should be an unlabeled placeholder, got %+v", one)
	}

	mid, _ := one.Child("1-01")
	leaf, _ := mid.Child("1-01-02")
	if leaf.Value != "1-01-02" || leaf.Label != "1-01-02 Classical Philology" || leaf.Count != 3 {
		t.Errorf("leaf = %+v", leaf)
	}
}

func TestAssembleTerminalOnAncestor(t *testing.T) {
	rows := append(philologyRows(), Row{Hierarchy: []string{"1"}, Description: "Humanities", Count: 5})
	root := Assemble(rows)
	one, _ := root.Child("1")
	if one.Label != "1 Humanities" || one.Count != 5 {
		t.Errorf("node 1 = %+v, want labeled by its own row", one)
	}
	if one.Len() != 1 {
		t.Error("labeling an ancestor must keep its children")
	}
}

func TestAssembleLastWriteWins(t *testing.T) {
	root := Assemble([]Row{
		{Hierarchy: []string{"3"}, Description: "Natural Sciences", Count: 1},
		{Hierarchy: []string{"3"}, Description: "Natural Sciences (rev)", Count: 4},
	})
	three, _ := root.Child("3")
	if three.Label != "3 Natural Sciences (rev)" || three.Count != 4 {
		t.Errorf("node 3 = %+v, want the last row", three)
	}
}

func TestAssembleSkipsEmptyPaths(t *testing.T) {
	root := Assemble([]Row{{Description: "nothing"}})
	if root.Len() != 0 {
		t.Errorf("empty hierarchy should add no nodes, got %d", root.Len())
	}
}

func TestToTreeList(t *testing.T) {
	got := ToTreeList(Assemble(philologyRows()))
	want := []TreeNode{
		{Label: "1", Value: "1", Children: []TreeNode{
			{Label: "1-01", Value: "1-01", Children: []TreeNode{
				{Label: "1-01-02 Classical Philology", Value: "1-01-02"},
				{Label: "1-01-01 Prehistory", Value: "1-01-01"},
			}},
		}},
		{Label: "2", Value: "2", Children: []TreeNode{
			{Label: "2-01 Basic Research in Biology", Value: "2-01"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToTreeList() mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeValuesParseBack(t *testing.T) {
	table := registry.Table{Records: []registry.Record{
		{ID: "r3d1", Name: "Dotted", Subjects: []string{"1.2.3 Dotted"}},
		{ID: "r3d2", Name: "Umlaut", Subjects: []string{"Ä1234 Foo"}},
		{ID: "r3d3", Name: "Dashed", Subjects: []string{"1-02-03 Modern History", "x/y_z Odd"}},
		{ID: "r3d4", Name: "Plain", Subjects: []string{"10102 Classical Philology"}},
	}}
	freqs := subject.Frequencies(table, nil)

	var walk func(nodes []TreeNode)
	walk = func(nodes []TreeNode) {
		for _, n := range nodes {
			sel, err := subject.ParseSelection(n.Value)
			if err != nil {
				t.Errorf("ParseSelection(%q) error: %v", n.Value, err)
			} else if !sel.Has(n.Value) {
				t.Errorf("ParseSelection(%q) = %v, want the value back", n.Value, sel.Values())
			} else if len(subject.FilterBySelection(freqs, sel)) == 0 {
				t.Errorf("tree value %q matches no subject", n.Value)
			}
			walk(n.Children)
		}
	}
	walk(ToTreeList(FromFrequencies(freqs)))
}

func TestToTreeListWithCounts(t *testing.T) {
	got := ToTreeList(Assemble(philologyRows()), WithCounts())
	if got[1].Children[0].Label != "2-01 Basic Research in Biology (2)" {
		t.Errorf("label = %q, want count suffix", got[1].Children[0].Label)
	}
	if got[0].Label != "1" {
		t.Errorf("placeholder label = %q, placeholders carry no count", got[0].Label)
	}
}

func TestToTreeListEmpty(t *testing.T) {
	for name, root := range map[string]*Node{"empty": NewRoot(), "nil": nil} {
		got := ToTreeList(root)
		if got == nil || len(got) != 0 {
			t.Errorf("%s: ToTreeList() = %#v, want empty non-nil slice", name, got)
		}
		data, _ := json.Marshal(got)
		if string(data) != "[]" {
			t.Errorf("%s: JSON = %s, want []", name, data)
		}
	}
}

func TestToTreeListLeafOmitsChildren(t *testing.T) {
	got := ToTreeList(Assemble([]Row{{Hierarchy: []string{"4"}, Description: "Engineering Sciences"}}))
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if want := `[{"label":"4 Engineering Sciences","value":"4"}]`; string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}
}

func TestToMarkdown(t *testing.T) {
	got := ToMarkdown(Assemble(philologyRows()), 0)
	want := strings.Join([]string{
		"- 1",
		"  - 1-01",
		"    - 1-01-02 Classical Philology",
		"    - 1-01-01 Prehistory",
		"- 2",
		"  - 2-01 Basic Research in Biology",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToMarkdown() mismatch (-want +got):\n%s", diff)
	}

	nested := ToMarkdown(Assemble([]Row{{Hierarchy: []string{"4"}, Description: "Eng"}}), 2)
	if nested != "    - 4 Eng\n" {
		t.Errorf("ToMarkdown(depth=2) = %q", nested)
	}
	if ToMarkdown(NewRoot(), 0) != "" {
		t.Error("empty tree should render an empty outline")
	}
}

func TestFromFrequencies(t *testing.T) {
	s, err := subject.Decompose("10102 Classical Philology")
	if err != nil {
		t.Fatal(err)
	}
	root := FromFrequencies([]subject.Frequency{{Subject: s, Count: 2, RepositoryIDs: []string{"r3d1", "r3d2"}}})
	got := ToTreeList(root, WithCounts())
	want := []TreeNode{{Label: "1", Value: "1", Children: []TreeNode{
		{Label: "1-01", Value: "1-01", Children: []TreeNode{
			{Label: "1-01-02 Classical Philology (2)", Value: "1-01-02"},
		}},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromFrequencies() mismatch (-want +got):\n%s", diff)
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(Assemble(philologyRows()))
	for _, want := range []string{
		"digraph subjects {",
		`"1" [label="1", style="rounded,filled,dashed", fillcolor=lightgrey];`,
		`"1/1-01/1-01-02" [label="1-01-02 Classical Philology (3)"];`,
		`"1/1-01" -> "1/1-01/1-01-02";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if plain := []byte("<svg></svg>"); string(normalizeViewBox(plain)) != "<svg></svg>" {
		t.Error("svg without viewBox should be unchanged")
	}
}
