package syntaxtable

import "testing"

func TestStaticTableRoundTrips(t *testing.T) {
	tbl := NewStaticTable()
	prod := &Production{Left: "S", RHSLen: 1}

	tbl.SetShift(0, "a", 1)
	tbl.SetGoto(0, "S", 2)
	tbl.SetReduce(1, "a", prod)
	tbl.SetAccept(2, "$")

	if a := tbl.Lookup(0, "a"); a.Kind != ActionShift || a.State != 1 {
		t.Fatalf("Lookup(0,a) = %+v, want Shift(1)", a)
	}
	if a := tbl.Lookup(0, "S"); a.Kind != ActionGoto || a.State != 2 {
		t.Fatalf("Lookup(0,S) = %+v, want Goto(2)", a)
	}
	if a := tbl.Lookup(1, "a"); a.Kind != ActionReduce || a.Production != prod {
		t.Fatalf("Lookup(1,a) = %+v, want Reduce(prod)", a)
	}
	if a := tbl.Lookup(2, "$"); a.Kind != ActionAccept {
		t.Fatalf("Lookup(2,$) = %+v, want Accept", a)
	}
	if a := tbl.Lookup(99, "nope"); a.Kind != ActionNone {
		t.Fatalf("Lookup(unknown) = %+v, want ActionNone", a)
	}
}

func TestProductionAmount(t *testing.T) {
	prod := &Production{Left: "S", RHSLen: 3}
	if prod.Amount() != 3 {
		t.Fatalf("Amount() = %d, want 3", prod.Amount())
	}
}
