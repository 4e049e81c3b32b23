package kinds

import (
	"math"
	"math/rand/v2"
)

// perlin is Ken Perlin's improved gradient noise with a seeded permutation.
type perlin struct {
	perm [512]uint8
}

func newPerlin(seed int64) *perlin {
	var base [256]uint8
	for i := range base {
		base[i] = uint8(i)
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
	rng.Shuffle(len(base), func(i, j int) { base[i], base[j] = base[j], base[i] })

	p := &perlin{}
	for i := range p.perm {
		p.perm[i] = base[i&255]
	}
	return p
}

// at returns noise at (x, y, z) in roughly [-1, 1]. It is zero on integer
// lattice points.
func (p *perlin) at(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	X, Y, Z := int(fx)&255, int(fy)&255, int(fz)&255
	x, y, z = x-fx, y-fy, z-fz
	u, v, w := fade(x), fade(y), fade(z)

	perm := &p.perm
	a := int(perm[X]) + Y
	aa, ab := int(perm[a])+Z, int(perm[a+1])+Z
	b := int(perm[X+1]) + Y
	ba, bb := int(perm[b])+Z, int(perm[b+1])+Z

	return lerp(w,
		lerp(v,
			lerp(u, grad(perm[aa], x, y, z), grad(perm[ba], x-1, y, z)),
			lerp(u, grad(perm[ab], x, y-1, z), grad(perm[bb], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(perm[aa+1], x, y, z-1), grad(perm[ba+1], x-1, y, z-1)),
			lerp(u, grad(perm[ab+1], x, y-1, z-1), grad(perm[bb+1], x-1, y-1, z-1))))
}

// billow sums octaves of folded noise. Each octave doubles the frequency and
// halves the amplitude; the sum is normalized back to [-1, 1].
func (p *perlin) billow(x, y, z float64, octaves int) float64 {
	var sum, norm float64
	amp := 1.0
	for range octaves {
		sum += amp * (2*math.Abs(p.at(x, y, z)) - 1)
		norm += amp
		x, y, z = x*2, y*2, z*2
		amp *= 0.5
	}
	return sum / norm
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func lerp(t, a, b float64) float64 { return a + t*(b-a) }

func grad(hash uint8, x, y, z float64) float64 {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
