package ecs

import (
	"reflect"
	"testing"
)

func newTestColumnStore(t *testing.T) (*columnStore, uint32) {
	t.Helper()
	typ := reflect.TypeOf(Position{})
	info, err := buildComponentInfo(typ)
	if err != nil {
		t.Fatalf("buildComponentInfo: %v", err)
	}
	idx := uint32(0)
	cs := newColumnStore([]uint32{idx}, map[uint32]*componentInfo{idx: info})
	return cs, idx
}

// TestColumnStoreColumnsStayEqualLength exercises invariant I1: every column
// of every component in a store is grown in lockstep, so they always report
// the same logical size after any sequence of addRow/removeRow calls.
func TestColumnStoreColumnsStayEqualLength(t *testing.T) {
	cs, idx := newTestColumnStore(t)
	for i := 0; i < 37; i++ {
		cs.addRow(map[uint32]reflect.Value{idx: reflect.ValueOf(Position{X: float64(i), Y: float64(-i)})})
	}
	cc := cs.components[idx]
	for _, col := range cc.columns {
		if col.values.Len() != cc.columns[0].values.Len() {
			t.Fatalf("column length %d differs from first column length %d", col.values.Len(), cc.columns[0].values.Len())
		}
		if col.values.Len() < cs.size {
			t.Fatalf("column length %d shorter than logical size %d", col.values.Len(), cs.size)
		}
	}
	cs.removeRow(5)
	if cs.size != 36 {
		t.Fatalf("size after removeRow = %d, want 36", cs.size)
	}
}

// TestColumnStoreReadAfterWriteIdempotent checks that decomposing a value
// into columns and reading it back via an archetype's reader yields the
// written value, repeatedly, for several rows.
func TestColumnStoreReadAfterWriteIdempotent(t *testing.T) {
	typ := reflect.TypeOf(Position{})
	info, err := buildComponentInfo(typ)
	if err != nil {
		t.Fatalf("buildComponentInfo: %v", err)
	}
	idx := uint32(0)
	arch := newArchetype(0, []uint32{idx}, map[uint32]*componentInfo{idx: info})

	want := []Position{{X: 1, Y: 2}, {X: -3.5, Y: 0}, {X: 100, Y: 100}}
	for _, p := range want {
		arch.store.addRow(map[uint32]reflect.Value{idx: reflect.ValueOf(p)})
	}

	r := reader[Position](arch, idx)
	for row, p := range want {
		got := r.Read(row)
		if got != p {
			t.Fatalf("row %d = %#v, want %#v", row, got, p)
		}
		// Reading twice must be idempotent.
		if got2 := r.Read(row); got2 != got {
			t.Fatalf("row %d changed between reads: %#v != %#v", row, got2, got)
		}
	}

	w := writer[Position](arch, idx)
	w.Write(1, Position{X: 9, Y: 9})
	if got := r.Read(1); got != (Position{X: 9, Y: 9}) {
		t.Fatalf("after Write, Read(1) = %#v, want {9 9}", got)
	}
}

// TestColumnStoreRemoveRowSwapsLast verifies the swap-remove contract
// removeRow documents: removing a non-last row reports the previously-last
// row index as moved, and that row's data now lives at the removed slot.
func TestColumnStoreRemoveRowSwapsLast(t *testing.T) {
	typ := reflect.TypeOf(Position{})
	info, err := buildComponentInfo(typ)
	if err != nil {
		t.Fatalf("buildComponentInfo: %v", err)
	}
	idx := uint32(0)
	arch := newArchetype(0, []uint32{idx}, map[uint32]*componentInfo{idx: info})

	rows := []Position{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	for _, p := range rows {
		arch.store.addRow(map[uint32]reflect.Value{idx: reflect.ValueOf(p)})
	}

	movedFrom := arch.store.removeRow(1)
	if movedFrom != 3 {
		t.Fatalf("removeRow(1) moved row = %d, want 3", movedFrom)
	}
	if arch.store.size != 3 {
		t.Fatalf("size after remove = %d, want 3", arch.store.size)
	}
	r := reader[Position](arch, idx)
	if got := r.Read(1); got != (Position{X: 3}) {
		t.Fatalf("row 1 after remove = %#v, want {3 0}", got)
	}
}
