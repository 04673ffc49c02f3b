package rational

import "testing"

func TestRatArithmetic(t *testing.T) {
	a := FromFrac(1, 2)
	b := FromFrac(1, 3)

	if got := a.Add(b); got.String() != "5/6" {
		t.Fatalf("Add: got %s, want 5/6", got.String())
	}
	if got := a.Sub(b); got.String() != "1/6" {
		t.Fatalf("Sub: got %s, want 1/6", got.String())
	}
	if got := a.Mul(b); got.String() != "1/6" {
		t.Fatalf("Mul: got %s, want 1/6", got.String())
	}
	q, err := a.Quo(b)
	if err != nil || q.String() != "3/2" {
		t.Fatalf("Quo: got %s, %v, want 3/2", q.String(), err)
	}
	if _, err := a.Quo(Zero()); err != ErrDivByZero {
		t.Fatalf("Quo by zero: got %v, want ErrDivByZero", err)
	}
}

func TestMod1(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"3/2", "1/2"},
		{"-1/2", "1/2"},
		{"7/3", "1/3"},
		{"0", "0"},
	}
	for _, c := range cases {
		var num, den int64
		switch c.in {
		case "3/2":
			num, den = 3, 2
		case "-1/2":
			num, den = -1, 2
		case "7/3":
			num, den = 7, 3
		case "0":
			num, den = 0, 1
		}
		got := FromFrac(num, den).Mod1()
		if got.String() != c.want {
			t.Errorf("Mod1(%s): got %s, want %s", c.in, got.String(), c.want)
		}
	}
}

func TestVec3Ordering(t *testing.T) {
	a := Vec3{0, 1, 0}
	b := Vec3{1, 0, 0}
	if a.Cmp(b) >= 0 {
		t.Fatalf("expected a < b")
	}
	if a.NumZeroCoords() != 2 {
		t.Fatalf("expected 2 zero coords, got %d", a.NumZeroCoords())
	}
	if a.LeadingNonzeroIndex() != 1 {
		t.Fatalf("expected leading index 1, got %d", a.LeadingNonzeroIndex())
	}
}

func TestMat3InverseAndDet(t *testing.T) {
	m := FromIntColumns(Vec3{1, 1, 0}, Vec3{0, 1, 1}, Vec3{1, 0, 1})
	det := m.Det()
	if det.String() != "2" {
		t.Fatalf("det: got %s, want 2", det.String())
	}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	prod := m.Mul(inv)
	id := Identity3()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if prod[r][c].Cmp(id[r][c]) != 0 {
				t.Fatalf("M*M^-1 != I at [%d][%d]: got %s", r, c, prod[r][c].String())
			}
		}
	}
}

func TestSingularMatrix(t *testing.T) {
	m := FromIntColumns(Vec3{1, 1, 0}, Vec3{2, 2, 0}, Vec3{0, 0, 1})
	if _, err := m.Inverse(); err != ErrSingular {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
}

func TestBudgetCheck(t *testing.T) {
	small := Budget{MaxDenBits: 4}
	v := FromFrac(1, 1<<10)
	if err := v.Check(small); err == nil {
		t.Fatalf("expected width-exceeded error")
	}
	if err := v.Check(Budget{}); err != nil {
		t.Fatalf("unlimited budget should not fail: %v", err)
	}
}
