package bramble

import (
	"strings"
	"testing"
)

// buildSampleTree returns the canonical four-node tree used across tests:
// root R with children A and B, and C under A.
func buildSampleTree() *Tree {
	tr := NewTree("t1", "R", "Root")
	tr.Add("R", "A", "Alpha")
	tr.Add("R", "B", "Beta")
	tr.Add("A", "C", "Gamma")
	return tr
}

// --- Construction ---

func TestNewTreeRootOnly(t *testing.T) {
	tr := NewTree("t1", "R", "Root")
	if tr.Root != "R" {
		t.Errorf("Root = %q, want %q", tr.Root, "R")
	}
	if len(tr.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(tr.Nodes))
	}
	if tr.Nodes["R"].Title != "Root" {
		t.Errorf("root Title = %q, want %q", tr.Nodes["R"].Title, "Root")
	}
}

func TestAddOrdersChildren(t *testing.T) {
	tr := buildSampleTree()
	got := tr.Nodes["R"].Children
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("root children = %v, want [A B]", got)
	}
}

func TestAddReturnsNodeForAttributes(t *testing.T) {
	tr := NewTree("t1", "R", "Root")
	n := tr.Add("R", "A", "Alpha")
	n.Label = "variant"
	if tr.Nodes["A"].Label != "variant" {
		t.Errorf("Label = %q, want %q", tr.Nodes["A"].Label, "variant")
	}
}

func TestAddUnknownParentPanic(t *testing.T) {
	tr := NewTree("t1", "R", "Root")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown parent, got none")
		}
	}()
	tr.Add("missing", "A", "Alpha")
}

func TestAddDuplicateIDPanic(t *testing.T) {
	tr := NewTree("t1", "R", "Root")
	tr.Add("R", "A", "Alpha")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for duplicate id, got none")
		}
	}()
	tr.Add("R", "A", "Alpha again")
}

// --- Validate ---

func TestValidateWellFormed(t *testing.T) {
	if err := buildSampleTree().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Tree)
		wantSub string
	}{
		{
			name:    "missing root",
			mutate:  func(tr *Tree) { delete(tr.Nodes, "R") },
			wantSub: "root",
		},
		{
			name: "dangling child",
			mutate: func(tr *Tree) {
				tr.Nodes["B"].Children = append(tr.Nodes["B"].Children, "ghost")
			},
			wantSub: "unknown child",
		},
		{
			name: "child claimed twice",
			mutate: func(tr *Tree) {
				tr.Nodes["B"].Children = append(tr.Nodes["B"].Children, "C")
			},
			wantSub: "claimed",
		},
		{
			name: "root listed as child",
			mutate: func(tr *Tree) {
				tr.Nodes["C"].Children = append(tr.Nodes["C"].Children, "R")
			},
			wantSub: "root",
		},
		{
			name: "orphan node",
			mutate: func(tr *Tree) {
				tr.Nodes["X"] = &TreeNode{ID: "X", Title: "orphan"}
			},
			wantSub: "unreachable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := buildSampleTree()
			tt.mutate(tr)
			err := tr.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

// --- walk ---

func TestWalkPreOrder(t *testing.T) {
	tr := buildSampleTree()
	var order []string
	var depths []int
	tr.walk(func(id string, _ *TreeNode, depth int) {
		order = append(order, id)
		depths = append(depths, depth)
	})
	if strings.Join(order, "") != "RACB" {
		t.Errorf("walk order = %v, want [R A C B]", order)
	}
	want := []int{0, 1, 2, 1}
	for i := range want {
		if depths[i] != want[i] {
			t.Errorf("depth[%d] = %d, want %d", i, depths[i], want[i])
		}
	}
}

func TestWalkSkipsDanglingChild(t *testing.T) {
	tr := buildSampleTree()
	tr.Nodes["B"].Children = []string{"ghost"}
	count := 0
	tr.walk(func(string, *TreeNode, int) { count++ })
	if count != 4 {
		t.Errorf("visited %d nodes, want 4", count)
	}
}

func TestWalkCycleGuard(t *testing.T) {
	// Malformed on purpose: C points back at R. The revisit must be treated
	// as a skipped edge, not infinite recursion.
	tr := buildSampleTree()
	tr.Nodes["C"].Children = []string{"R"}
	count := 0
	tr.walk(func(string, *TreeNode, int) { count++ })
	if count != 4 {
		t.Errorf("visited %d nodes, want 4", count)
	}
}

// --- parentIndex ---

func TestParentIndex(t *testing.T) {
	tr := buildSampleTree()
	parents := tr.parentIndex()
	tests := []struct {
		id, want string
	}{
		{"A", "R"},
		{"B", "R"},
		{"C", "A"},
	}
	for _, tt := range tests {
		if parents[tt.id] != tt.want {
			t.Errorf("parent[%s] = %q, want %q", tt.id, parents[tt.id], tt.want)
		}
	}
	if _, ok := parents["R"]; ok {
		t.Error("root should have no parent entry")
	}
}

func TestParentIndexFirstClaimWins(t *testing.T) {
	// B also claims C; A claims it first in traversal order.
	tr := buildSampleTree()
	tr.Nodes["B"].Children = []string{"C"}
	parents := tr.parentIndex()
	if parents["C"] != "A" {
		t.Errorf("parent[C] = %q, want %q", parents["C"], "A")
	}
}
