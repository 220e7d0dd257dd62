package pathkey

import "testing"

func TestCompareComponentWise(t *testing.T) {
	// Byte-wise, "a-2" would sort before "a/z" because '-' (0x2D) sorts
	// before '/' (0x2F). Component-wise, "a/z" is a child of "a" and so
	// belongs to "a"'s subtree, which sorts before the sibling "a-2": the
	// sibling must never land inside "a"'s subtree range.
	if Compare("a-2", "a/z") <= 0 {
		t.Fatalf("expected a/z < a-2, component-wise")
	}
	if !(Compare("a", "a-2") < 0 && Compare("a", "a/z") < 0) {
		t.Fatalf("expected \"a\" to sort before both its sibling and its child")
	}
}

func TestCompareRootSortsFirst(t *testing.T) {
	if Compare("", "anything") >= 0 {
		t.Fatalf("root path must sort before every other path")
	}
}

func TestStartsWith(t *testing.T) {
	cases := []struct {
		p, b string
		want bool
	}{
		{"a/b", "a", true},
		{"a/b/c", "a/b", true},
		{"a", "a", true},
		{"ab", "a", false},
		{"a-2", "a", false},
		{"anything", "", true},
	}
	for _, c := range cases {
		if got := StartsWith(c.p, c.b); got != c.want {
			t.Errorf("StartsWith(%q, %q) = %v, want %v", c.p, c.b, got, c.want)
		}
	}
}

func TestCompareEntryToQueryExact(t *testing.T) {
	if CompareEntryToQuery("a/b", Exact("a/b")) != 0 {
		t.Fatalf("expected exact match to compare equal")
	}
	if CompareEntryToQuery("a/a", Exact("a/b")) >= 0 {
		t.Fatalf("expected a/a < a/b")
	}
}

func TestCompareEntryToQuerySuccessor(t *testing.T) {
	// Everything under "a" (including "a" itself) sorts before the
	// successor boundary of "a"; everything else compares by path.
	if CompareEntryToQuery("a", Successor("a")) >= 0 {
		t.Fatalf("expected a < Successor(a)")
	}
	if CompareEntryToQuery("a/b/c", Successor("a")) >= 0 {
		t.Fatalf("expected a descendant of a to sort before Successor(a)")
	}
	if CompareEntryToQuery("b", Successor("a")) <= 0 {
		t.Fatalf("expected a sibling after a to sort after Successor(a)")
	}
}

func TestCompareEntryToQueryReversedCase(t *testing.T) {
	// The "reversed" combination: Exact(a) against Successor(b). Resolved
	// as: Exact(a) < Successor(b) iff a starts with b (a is inside, or is,
	// the subtree the successor boundary sits just past); otherwise plain
	// path comparison decides it.
	if CompareEntryToQuery("a/child", Successor("a")) >= 0 {
		t.Fatalf("a/child starts with a, so Exact(a/child) must sort before Successor(a)")
	}
	if CompareEntryToQuery("z", Successor("a")) <= 0 {
		t.Fatalf("z does not start with a, so Exact(z) must sort after Successor(a) only by plain comparison")
	}
	if CompareEntryToQuery("0", Successor("a")) >= 0 {
		t.Fatalf("\"0\" does not start with a and sorts before it, so Exact(0) < Successor(a)")
	}
}

func TestIncludedBias(t *testing.T) {
	if !Included(-1, Left) || Included(0, Left) {
		t.Fatalf("Left bias must include strictly-less, exclude equal")
	}
	if !Included(0, Right) || Included(1, Right) {
		t.Fatalf("Right bias must include equal, exclude strictly-greater")
	}
}
