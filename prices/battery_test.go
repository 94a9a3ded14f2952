package prices

import "testing"

func TestBreakeven(t *testing.T) {
	if b := Breakeven(0.20, 80); !almostEqual(b, 0.16) {
		t.Errorf("got breakeven %f, wanted 0.16", b)
	}
	if b := Breakeven(0.20, 0); !almostEqual(b, 0.20) {
		t.Errorf("zero efficiency should mean no loss adjustment, got %f", b)
	}
	if b := Breakeven(0.20, -5); !almostEqual(b, 0.20) {
		t.Errorf("negative efficiency should mean no loss adjustment, got %f", b)
	}
}

func TestEconomical(t *testing.T) {
	breakeven := Breakeven(0.20, 80)

	if !Economical(0.15, breakeven) {
		t.Error("0.15 should be economical against breakeven 0.16")
	}
	if Economical(0.17, breakeven) {
		t.Error("0.17 should not be economical against breakeven 0.16")
	}
	if !Economical(0.16, breakeven) {
		t.Error("price equal to breakeven counts as economical")
	}
}

func TestEffectiveCostAndSavings(t *testing.T) {
	cost := EffectiveCost(0.16, 80)
	if !almostEqual(cost, 0.20) {
		t.Errorf("got effective cost %f, wanted 0.20", cost)
	}

	if s := Savings(0.25, cost); !almostEqual(s, 0.05) {
		t.Errorf("got savings %f, wanted 0.05", s)
	}

	if cost := EffectiveCost(0.16, 0); !almostEqual(cost, 0.16) {
		t.Errorf("zero efficiency should leave the price untouched, got %f", cost)
	}
}
