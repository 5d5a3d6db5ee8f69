package sparse

import "testing"

func TestMatrixSetAndAdd(t *testing.T) {
	M := NewIntMatrix(10, 10, DefaultNullValue)
	M.Set(2, 3, 4711)
	if v := M.Value(2, 3); v != 4711 {
		t.Errorf("expected M(2,3) = 4711, is %d", v)
	}
	M.Add(2, 3, 123)
	if a, b := M.Values(2, 3); a != 4711 || b != 123 {
		t.Errorf("expected M(2,3) = (4711,123), is (%d,%d)", a, b)
	}
	if M.ValueCount() != 1 {
		t.Errorf("expected 1 position set, have %d", M.ValueCount())
	}
	if v := M.Value(9, 9); v != M.NullValue() {
		t.Errorf("expected null value at (9,9), is %d", v)
	}
	M.Set(2, 3, 1)
	if a, b := M.Values(2, 3); a != 1 || b != M.NullValue() {
		t.Errorf("expected Set to clear the shadow value, have (%d,%d)", a, b)
	}
}

func TestMatrixOrder(t *testing.T) {
	M := NewIntMatrix(5, 5, -1)
	M.Set(4, 0, 1).Set(0, 4, 2).Set(2, 2, 3).SetPair(0, 0, 4, 5).Add(1, 1, 6)
	var order []int32
	M.Each(func(i, j int, a, b int32) {
		order = append(order, a)
	})
	expected := []int32{4, 2, 6, 3, 1}
	for k := range expected {
		if order[k] != expected[k] {
			t.Fatalf("expected row-major order %v, have %v", expected, order)
		}
	}
	if a, b := M.Values(0, 0); a != 4 || b != 5 {
		t.Errorf("expected pair (4,5) at (0,0), have (%d,%d)", a, b)
	}
}

func TestMatrixBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected out of range index to panic")
		}
	}()
	NewIntMatrix(2, 2, -1).Set(2, 0, 1)
}
