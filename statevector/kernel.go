package statevector

import (
	"context"

	"golang.org/x/sync/errgroup"

	"qtermsim/circuit"
	"qtermsim/gates"
)

func applyOp(ctx context.Context, amps []complex128, app circuit.Application, workers int) error {
	ctrl := 0
	if app.Control >= 0 {
		ctrl = 1 << app.Control
	}

	switch op := app.Op.(type) {
	case gates.Single:
		bit := 1 << app.Target
		return forRange(ctx, len(amps)/2, workers, func(lo, hi int) {
			applySingle(amps, op, bit, ctrl, lo, hi)
		})
	case gates.Double:
		b1, b2 := 1<<app.Target, 1<<app.Target2
		return forRange(ctx, len(amps)/4, workers, func(lo, hi int) {
			applyDouble(amps, &op.Matrix, b1, b2, ctrl, lo, hi)
		})
	}
	return nil
}

// forRange runs fn over [0, n) split into one chunk per worker. Every pair or
// quad index belongs to exactly one chunk, so the chunks never overlap.
func forRange(ctx context.Context, n, workers int, fn func(lo, hi int)) error {
	if workers <= 1 || n < workers {
		fn(0, n)
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// insertZero widens k by inserting a zero bit at the position of bit.
func insertZero(k, bit int) int {
	return (k&^(bit-1))<<1 | k&(bit-1)
}

// applySingle combines the pairs (i, i|bit) for pair numbers in [lo, hi).
// A non-zero ctrl restricts the update to indices with that bit set.
func applySingle(amps []complex128, op gates.Single, bit, ctrl, lo, hi int) {
	m := op.Matrix
	for k := lo; k < hi; k++ {
		i := insertZero(k, bit)
		if i&ctrl != ctrl {
			continue
		}
		j := i | bit
		a0, a1 := amps[i], amps[j]
		switch op.Shape {
		case gates.Diagonal:
			amps[i] = m[0][0] * a0
			amps[j] = m[1][1] * a1
		case gates.AntiDiagonal:
			amps[i] = m[0][1] * a1
			amps[j] = m[1][0] * a0
		default:
			amps[i] = m[0][0]*a0 + m[0][1]*a1
			amps[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

// applyDouble combines the quads spanned by b1 (target) and b2 (target2) for
// quad numbers in [lo, hi). Sub-state k of the matrix is 2*bit(b1) + bit(b2).
func applyDouble(amps []complex128, m *gates.Matrix4, b1, b2, ctrl, lo, hi int) {
	low, high := min(b1, b2), max(b1, b2)
	var idx [4]int
	var in [4]complex128
	for k := lo; k < hi; k++ {
		base := insertZero(insertZero(k, low), high)
		if base&ctrl != ctrl {
			continue
		}
		idx = [4]int{base, base | b2, base | b1, base | b1 | b2}
		for r := range 4 {
			in[r] = amps[idx[r]]
		}
		for r := range 4 {
			amps[idx[r]] = m[r][0]*in[0] + m[r][1]*in[1] + m[r][2]*in[2] + m[r][3]*in[3]
		}
	}
}
