package gates

import (
	"errors"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

const pi = math.Pi

// Matrix2 is a row-major 2x2 complex matrix.
type Matrix2 [2][2]complex128

// Matrix4 is a row-major 4x4 complex matrix.
type Matrix4 [4][4]complex128

// Shape classifies a 2x2 matrix so the kernel can skip zero products.
type Shape int

const (
	Dense        Shape = iota
	Diagonal           // only m00 and m11 are non-zero
	AntiDiagonal       // only m01 and m10 are non-zero: a permutation with phases
)

func (s Shape) String() string {
	switch s {
	case Diagonal:
		return "diagonal"
	case AntiDiagonal:
		return "anti-diagonal"
	default:
		return "dense"
	}
}

func classify(m Matrix2) Shape {
	switch {
	case m[0][1] == 0 && m[1][0] == 0:
		return Diagonal
	case m[0][0] == 0 && m[1][1] == 0:
		return AntiDiagonal
	default:
		return Dense
	}
}

// Dagger returns the conjugate transpose.
func (m Matrix2) Dagger() Matrix2 {
	var d Matrix2
	for r := range 2 {
		for c := range 2 {
			d[r][c] = cmplx.Conj(m[c][r])
		}
	}
	return d
}

// Mul returns m*o.
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	var p Matrix2
	for r := range 2 {
		for c := range 2 {
			p[r][c] = m[r][0]*o[0][c] + m[r][1]*o[1][c]
		}
	}
	return p
}

// IsUnitary reports whether m times its conjugate transpose is the identity within tol.
func (m Matrix2) IsUnitary(tol float64) bool {
	p := m.Mul(m.Dagger())
	for r := range 2 {
		for c := range 2 {
			want := complex(0, 0)
			if r == c {
				want = 1
			}
			if cmplx.Abs(p[r][c]-want) > tol {
				return false
			}
		}
	}
	return true
}

// IsUnitary reports whether m times its conjugate transpose is the identity within tol.
func (m Matrix4) IsUnitary(tol float64) bool {
	for r := range 4 {
		for c := range 4 {
			var sum complex128
			for k := range 4 {
				sum += m[r][k] * cmplx.Conj(m[c][k])
			}
			want := complex(0, 0)
			if r == c {
				want = 1
			}
			if cmplx.Abs(sum-want) > tol {
				return false
			}
		}
	}
	return true
}

var (
	h = complex(1/math.Sqrt2, 0)

	identity = Matrix2{{1, 0}, {0, 1}}
	pauliX   = Matrix2{{0, 1}, {1, 0}}
	pauliY   = Matrix2{{0, -1i}, {1i, 0}}
	pauliZ   = Matrix2{{1, 0}, {0, -1}}
	hadamard = Matrix2{{h, h}, {h, -h}}
	sGate    = Matrix2{{1, 0}, {0, 1i}}
	tGate    = Matrix2{{1, 0}, {0, cmplx.Exp(complex(0, pi/4))}}
	sqrtNot  = Matrix2{{0.5 + 0.5i, 0.5 - 0.5i}, {0.5 - 0.5i, 0.5 + 0.5i}}

	swap = Matrix4{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	}
	iswap = Matrix4{
		{1, 0, 0, 0},
		{0, 0, 1i, 0},
		{0, 1i, 0, 0},
		{0, 0, 0, 1},
	}
	sqrtSwap = Matrix4{
		{1, 0, 0, 0},
		{0, 0.5 + 0.5i, 0.5 - 0.5i, 0},
		{0, 0.5 - 0.5i, 0.5 + 0.5i, 0},
		{0, 0, 0, 1},
	}
)

func phase(angle float64) complex128 {
	return cmplx.Exp(complex(0, angle))
}

func u1(lambda float64) Matrix2 {
	return Matrix2{{1, 0}, {0, phase(lambda)}}
}

func u3(theta, phi, lambda float64) Matrix2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return Matrix2{
		{c, -phase(lambda) * s},
		{phase(phi) * s, phase(phi+lambda) * c},
	}
}

func rx(theta float64) Matrix2 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return Matrix2{{c, js}, {js, c}}
}

func ry(theta float64) Matrix2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return Matrix2{{c, -s}, {s, c}}
}

func rz(theta float64) Matrix2 {
	return Matrix2{{phase(-theta / 2), 0}, {0, phase(theta / 2)}}
}

func swapPhi(phi float64) Matrix4 {
	p := phase(phi)
	return Matrix4{
		{1, 0, 0, 0},
		{0, 0, p, 0},
		{0, p, 0, 0},
		{0, 0, 0, 1},
	}
}

// xx is exp(-i*theta/2 * X⊗X).
func xx(theta float64) Matrix4 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return Matrix4{
		{c, 0, 0, js},
		{0, c, js, 0},
		{0, js, c, 0},
		{js, 0, 0, c},
	}
}

// yy is exp(-i*theta/2 * Y⊗Y).
func yy(theta float64) Matrix4 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, math.Sin(theta/2))
	return Matrix4{
		{c, 0, 0, js},
		{0, c, -js, 0},
		{0, -js, c, 0},
		{js, 0, 0, c},
	}
}

// zz is exp(-i*theta/2 * Z⊗Z).
func zz(theta float64) Matrix4 {
	even := phase(-theta / 2)
	odd := phase(theta / 2)
	return Matrix4{
		{even, 0, 0, 0},
		{0, odd, 0, 0},
		{0, 0, odd, 0},
		{0, 0, 0, even},
	}
}

// ParseRoot converts the root notation of the pauli root gates into its value.
// "k", "2^k" and "1/2^k" all denote 2^k; the gate angle is pi divided by it.
func ParseRoot(root string) (float64, error) {
	s := strings.TrimSpace(root)
	s = strings.TrimPrefix(s, "1/")
	s = strings.TrimPrefix(s, "2^")
	if s == "" {
		return 0, errors.New("empty root")
	}
	k, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("root must look like k, 2^k or 1/2^k")
	}
	return math.Pow(2, k), nil
}
