package weights

import (
	"encoding/json"
	"fmt"
	"math"
)

// #region keys

// Key names one component of the optimization weight vector.
type Key string

const (
	KeyFitness     Key = "fitness"
	KeyFreshness   Key = "freshness"
	KeyConsistency Key = "consistency"
	KeyRecovery    Key = "recovery"
)

// NumKeys is the fixed vector size.
const NumKeys = 4

// KeyOrder is the stable key order. Rounding residue is always assigned to the
// last unlocked key in this order, so the exact-sum invariant holds at the
// cost of concentrating rounding error there.
var KeyOrder = [NumKeys]Key{KeyFitness, KeyFreshness, KeyConsistency, KeyRecovery}

// Index returns the position of k in KeyOrder.
func Index(k Key) (int, bool) {
	for i, key := range KeyOrder {
		if key == k {
			return i, true
		}
	}
	return 0, false
}

// #endregion keys

// #region vector

// Vector is a fixed-size weight vector indexed by KeyOrder. Invariant after
// Normalize/Rebalance: every element is in [0,1] and the elements sum to
// exactly 1 at Precision decimal digits.
type Vector [NumKeys]float64

// LockSet marks individual weights as locked, indexed by KeyOrder.
type LockSet [NumKeys]bool

// Precision is the fixed decimal rounding precision for normalized weights.
const Precision = 6

// varEpsilon is the threshold below which a variable-key total is treated as
// zero and the remaining budget is split evenly.
const varEpsilon = 1e-9

// Uniform returns the vector with 1/NumKeys in every slot.
func Uniform() Vector {
	var v Vector
	share := roundFixed(1.0 / NumKeys)
	for i := range v {
		v[i] = share
	}
	v[NumKeys-1] = roundFixed(v[NumKeys-1] + (1 - share*NumKeys))
	return v
}

// Sum returns the raw element sum.
func (v Vector) Sum() float64 {
	total := 0.0
	for _, w := range v {
		total += w
	}
	return total
}

// Get returns the weight for k, or 0 for an unknown key.
func (v Vector) Get(k Key) float64 {
	if i, ok := Index(k); ok {
		return v[i]
	}
	return 0
}

// #endregion vector

// #region normalize

// Normalize clamps every weight to [0,1] and rescales the vector to sum to
// exactly 1 at Precision digits. A non-positive raw sum yields the uniform
// vector.
func Normalize(v Vector) Vector {
	return normalizeFree(v, LockSet{})
}

// normalizeFree rescales the unlocked weights so the whole vector sums to
// exactly lockedTotal + clamp01(1 - lockedTotal). Locked elements are not
// touched, not even clamped.
func normalizeFree(v Vector, locks LockSet) Vector {
	out := v
	lockedTotal := 0.0
	free := make([]int, 0, NumKeys)
	for i := range out {
		if locks[i] {
			lockedTotal += out[i]
			continue
		}
		out[i] = clamp01(out[i])
		free = append(free, i)
	}
	if len(free) == 0 {
		return out
	}

	budget := clamp01(1 - lockedTotal)
	raw := 0.0
	for _, i := range free {
		raw += out[i]
	}

	if raw <= 0 {
		share := roundFixed(budget / float64(len(free)))
		for _, i := range free {
			out[i] = share
		}
	} else {
		for _, i := range free {
			out[i] = roundFixed(out[i] / raw * budget)
		}
	}

	// Assign the rounding residue to the last free key in KeyOrder.
	total := lockedTotal
	for _, i := range free {
		total += out[i]
	}
	last := free[len(free)-1]
	out[last] = roundFixed(out[last] + (lockedTotal + budget - total))
	return out
}

// #endregion normalize

// #region rebalance

// Rebalance applies a user edit of the active key to nextValue and
// redistributes the remaining budget across the unlocked, non-active keys in
// proportion to their current relative share. Locked weights are untouched;
// the final vector always sums to exactly 1 at Precision digits. When the
// locked total plus nextValue exceeds 1, the active key yields to the sum
// constraint rather than the locked keys.
func Rebalance(v Vector, locks LockSet, active Key, nextValue float64) Vector {
	ai, ok := Index(active)
	if !ok {
		return Normalize(v)
	}

	out := v
	out[ai] = clamp01(nextValue)

	fixedTotal := out[ai]
	variable := make([]int, 0, NumKeys)
	varTotal := 0.0
	for i := range out {
		if i == ai {
			continue
		}
		if locks[i] {
			fixedTotal += out[i]
			continue
		}
		variable = append(variable, i)
		varTotal += clamp01(out[i])
	}

	if len(variable) == 0 {
		return normalizeFree(out, locks)
	}

	budget := clamp01(1 - fixedTotal)
	if varTotal <= varEpsilon {
		share := budget / float64(len(variable))
		for _, i := range variable {
			out[i] = share
		}
	} else {
		for _, i := range variable {
			out[i] = clamp01(out[i]) / varTotal * budget
		}
	}

	return normalizeFree(out, locks)
}

// #endregion rebalance

// #region json

// MarshalJSON encodes the vector as an object keyed by weight name.
func (v Vector) MarshalJSON() ([]byte, error) {
	m := make(map[Key]float64, NumKeys)
	for i, k := range KeyOrder {
		m[k] = v[i]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by weight name. Unknown keys are an
// error: the key set is closed.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var m map[Key]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Vector
	for k, w := range m {
		i, ok := Index(k)
		if !ok {
			return fmt.Errorf("unknown weight key %q", k)
		}
		out[i] = w
	}
	*v = out
	return nil
}

// #endregion json

// #region helpers

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

var roundScale = math.Pow(10, Precision)

func roundFixed(x float64) float64 {
	return math.Round(x*roundScale) / roundScale
}

// #endregion helpers
