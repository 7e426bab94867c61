package weights

import (
	"encoding/json"
	"math"
	"testing"
)

func sumRounded(v Vector) float64 {
	return roundFixed(v.Sum())
}

func TestNormalizeRescalesToOne(t *testing.T) {
	v := Vector{2, 1, 1, 0}
	out := Normalize(v)

	if sumRounded(out) != 1 {
		t.Fatalf("sum = %.9f, want 1", out.Sum())
	}
	if out[0] != 0.5 || out[1] != 0.25 || out[2] != 0.25 || out[3] != 0 {
		t.Fatalf("unexpected normalization: %v", out)
	}
}

func TestNormalizeZeroSumYieldsUniform(t *testing.T) {
	out := Normalize(Vector{})
	for i, w := range out {
		if w != 0.25 {
			t.Fatalf("slot %d = %f, want 0.25", i, w)
		}
	}
}

func TestNormalizeClampsNegatives(t *testing.T) {
	out := Normalize(Vector{-3, 0.5, 0.5, 0})
	if out[0] != 0 {
		t.Fatalf("negative weight should clamp to 0, got %f", out[0])
	}
	if sumRounded(out) != 1 {
		t.Fatalf("sum = %.9f, want 1", out.Sum())
	}
}

func TestNormalizeResidualGoesToLastKey(t *testing.T) {
	// 1/3 each cannot round to an exact sum; the last key absorbs the residue.
	out := Normalize(Vector{1, 1, 1, 0})
	if sumRounded(out) != 1 {
		t.Fatalf("sum = %.9f, want 1", out.Sum())
	}
	if out[0] != out[1] {
		t.Fatalf("first two keys should round identically: %v", out)
	}
}

func TestRebalanceActiveKeyYieldsToLock(t *testing.T) {
	// weights {a:0.5, b:0.3, c:0.1, d:0.1}, lock b, set a = 0.9.
	v := Vector{0.5, 0.3, 0.1, 0.1}
	var locks LockSet
	locks[1] = true

	out := Rebalance(v, locks, KeyFitness, 0.9)

	if out[1] != 0.3 {
		t.Fatalf("locked weight changed: %f", out[1])
	}
	rest := roundFixed(out[0] + out[2] + out[3])
	if rest != 0.7 {
		t.Fatalf("unlocked weights sum to %f, want 0.7", rest)
	}
	if out[2] != out[3] {
		t.Fatalf("c:d ratio not preserved: %f vs %f", out[2], out[3])
	}
	if sumRounded(out) != 1 {
		t.Fatalf("sum = %.9f, want 1", out.Sum())
	}
}

func TestRebalancePreservesVariableRatios(t *testing.T) {
	v := Vector{0.4, 0.3, 0.2, 0.1}
	out := Rebalance(v, LockSet{}, KeyFitness, 0.6)

	if out[0] != 0.6 {
		t.Fatalf("active key = %f, want 0.6", out[0])
	}
	// b:c:d were 3:2:1 and must stay 3:2:1 over the 0.4 budget.
	if math.Abs(out[1]-0.2) > 1e-6 || math.Abs(out[2]-0.133333) > 1e-6 || math.Abs(out[3]-0.066667) > 1e-6 {
		t.Fatalf("ratios not preserved: %v", out)
	}
	if sumRounded(out) != 1 {
		t.Fatalf("sum = %.9f, want 1", out.Sum())
	}
}

func TestRebalanceZeroVariableTotalSplitsEvenly(t *testing.T) {
	v := Vector{1, 0, 0, 0}
	out := Rebalance(v, LockSet{}, KeyFitness, 0.4)

	if out[0] != 0.4 {
		t.Fatalf("active key = %f, want 0.4", out[0])
	}
	if out[1] != 0.2 || out[2] != 0.2 || out[3] != 0.2 {
		t.Fatalf("expected even split of 0.6: %v", out)
	}
}

func TestRebalanceAllOthersLocked(t *testing.T) {
	v := Vector{0.4, 0.2, 0.2, 0.2}
	locks := LockSet{false, true, true, true}

	out := Rebalance(v, locks, KeyFitness, 0.9)

	// Locked total is 0.6; the active key must yield to the sum constraint.
	if out[1] != 0.2 || out[2] != 0.2 || out[3] != 0.2 {
		t.Fatalf("locked weights changed: %v", out)
	}
	if out[0] != 0.4 {
		t.Fatalf("active key should clamp to remaining budget 0.4, got %f", out[0])
	}
	if sumRounded(out) != 1 {
		t.Fatalf("sum = %.9f, want 1", out.Sum())
	}
}

func TestRebalanceSumInvariantUnderSequences(t *testing.T) {
	v := Uniform()
	var locks LockSet
	locks[2] = true

	edits := []struct {
		key Key
		val float64
	}{
		{KeyFitness, 0.8},
		{KeyRecovery, 0.05},
		{KeyFitness, -0.3},
		{KeyFreshness, 1.4},
		{KeyRecovery, 0.33},
	}
	for _, e := range edits {
		before := v[2]
		v = Rebalance(v, locks, e.key, e.val)
		if v[2] != before {
			t.Fatalf("locked weight moved during edit of %s: %f -> %f", e.key, before, v[2])
		}
		if sumRounded(v) != 1 {
			t.Fatalf("sum invariant broken after edit of %s: %.9f", e.key, v.Sum())
		}
		for i, w := range v {
			if w < 0 || w > 1 {
				t.Fatalf("weight %d out of range: %f", i, w)
			}
		}
	}
}

func TestVectorJSONRoundTrip(t *testing.T) {
	v := Vector{0.5, 0.2, 0.2, 0.1}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Vector
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != v {
		t.Fatalf("round trip mismatch: %v != %v", back, v)
	}

	var bad Vector
	if err := json.Unmarshal([]byte(`{"stamina":1}`), &bad); err == nil {
		t.Fatal("unknown key should be rejected")
	}
}
