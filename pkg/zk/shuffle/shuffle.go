// Package zkshuffle implements a proof that a list of ElGamal ciphertexts is a
// permuted rerandomization of another list.
//
// The argument is the commitment-consistent proof of shuffle of Wikström and
// Terelius-Wikström, in the layout of Haenni, Locher, Koenig and Dubuis,
// "Pseudo-Code Algorithms for Verifiable Re-Encryption Mix-Nets" (2017),
// written additively. The prover commits to the permutation matrix, shows that
// the committed matrix is a permutation matrix using a chain of commitments to
// the permuted challenges, and ties the outputs to the inputs with a single
// batched sigma protocol.
package zkshuffle

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/mental-poker/pkg/elgamal"
	"github.com/taurusgroup/mental-poker/pkg/hash"
	"github.com/taurusgroup/mental-poker/pkg/math/curve"
	"github.com/taurusgroup/mental-poker/pkg/math/permutation"
	"github.com/taurusgroup/mental-poker/pkg/math/sample"
	"github.com/taurusgroup/mental-poker/pkg/pool"
)

type Public struct {
	Generators *Generators

	// PublicKey is the key all ciphertexts are encrypted under.
	PublicKey elgamal.PublicKey

	// Input = e₀, …, e_{N-1}
	Input []*elgamal.Ciphertext

	// Output = e'₀, …, e'_{N-1}, with e'ᵢ = e_{ψ(i)} + Enc(0; Randomness[ψ(i)])
	Output []*elgamal.Ciphertext
}

type Private struct {
	// Permutation = ψ, mapping output positions to input positions.
	Permutation permutation.Permutation

	// Randomness[j] is the rerandomization applied to Input[j].
	Randomness []curve.Scalar
}

type Proof struct {
	group curve.Curve

	// C[j] = rⱼ⋅G + H_{ψ⁻¹(j)}
	C []curve.Point
	// CHat[i] = r̂ᵢ⋅G + u'ᵢ⋅CHat[i-1], starting from H
	CHat []curve.Point

	// T1 = ω₁⋅G
	T1 curve.Point
	// T2 = ω₂⋅G
	T2 curve.Point
	// T3 = ω₃⋅G + ∑ ω'ᵢ⋅Hᵢ
	T3 curve.Point
	// T4 = ∑ ω'ᵢ⋅e'ᵢ - Enc(0; ω₄)
	T4C1, T4C2 curve.Point
	// THat[i] = ω̂ᵢ⋅G + ω'ᵢ⋅CHat[i-1]
	THat []curve.Point

	S1, S2, S3, S4 curve.Scalar
	SHat           []curve.Scalar
	SPrime         []curve.Scalar
}

var errShape = errors.New("zkshuffle: inconsistent sizes")

// Size returns the number of ciphertexts the proof is about.
func (p *Proof) Size() int {
	return len(p.C)
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.group == nil {
		return false
	}
	if err := public.validate(p.group); err != nil {
		return false
	}
	n := len(public.Input)
	if len(p.C) != n || len(p.CHat) != n || len(p.THat) != n || len(p.SHat) != n || len(p.SPrime) != n {
		return false
	}
	for _, pt := range append(append(append([]curve.Point{p.T1, p.T2, p.T3, p.T4C1, p.T4C2}, p.C...), p.CHat...), p.THat...) {
		if pt == nil {
			return false
		}
	}
	for _, s := range append(append([]curve.Scalar{p.S1, p.S2, p.S3, p.S4}, p.SHat...), p.SPrime...) {
		if s == nil {
			return false
		}
	}
	return true
}

func (public Public) validate(group curve.Curve) error {
	n := len(public.Input)
	if n == 0 || len(public.Output) != n {
		return errShape
	}
	if public.PublicKey == nil || public.PublicKey.IsIdentity() {
		return fmt.Errorf("zkshuffle: invalid public key")
	}
	if err := public.Generators.validate(group, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !public.Input[i].Valid() || !public.Output[i].Valid() {
			return fmt.Errorf("zkshuffle: ciphertext %d is not set", i)
		}
	}
	return nil
}

func NewProof(rand io.Reader, group curve.Curve, hash *hash.Hash, public Public, private Private, pl *pool.Pool) (*Proof, error) {
	if err := public.validate(group); err != nil {
		return nil, err
	}
	n := len(public.Input)
	psi := private.Permutation
	if psi.Size() != n || len(private.Randomness) != n {
		return nil, errShape
	}
	if _, err := permutation.New(psi); err != nil {
		return nil, fmt.Errorf("zkshuffle: %w", err)
	}
	G := group.NewBasePoint()
	gens := public.Generators
	psiInv := psi.Inverse()

	// all randomness is drawn up front, in a fixed order
	r, err := sample.Scalars(rand, group, n)
	if err != nil {
		return nil, err
	}
	rHat, err := sample.Scalars(rand, group, n)
	if err != nil {
		return nil, err
	}
	omegaHat, err := sample.Scalars(rand, group, n)
	if err != nil {
		return nil, err
	}
	omegaPrime, err := sample.Scalars(rand, group, n)
	if err != nil {
		return nil, err
	}
	omega, err := sample.Scalars(rand, group, 4)
	if err != nil {
		return nil, err
	}

	// c[j] = rⱼ⋅G + H_{ψ⁻¹(j)}
	C := parallelPoints(pl, n, func(j int) curve.Point {
		return r[j].ActOnBase().Add(gens.Hs[psiInv[j]])
	})

	if err = writePublic(hash, public); err != nil {
		return nil, err
	}
	u, err := challenges(hash, group, C, n)
	if err != nil {
		return nil, err
	}
	// u'ᵢ = u_{ψ(i)}, rerandomization of output i is r'ᵢ = Randomness[ψ(i)]
	uPrime := make([]curve.Scalar, n)
	rPrime := make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		uPrime[i] = u[psi[i]]
		rPrime[i] = private.Randomness[psi[i]]
	}

	// the chain is sequential
	CHat := make([]curve.Point, n)
	prev := gens.H
	for i := 0; i < n; i++ {
		CHat[i] = rHat[i].ActOnBase().Add(uPrime[i].Act(prev))
		prev = CHat[i]
	}

	// v_{N-1} = 1, vᵢ₋₁ = u'ᵢ⋅vᵢ
	v := make([]curve.Scalar, n)
	v[n-1] = curve.ScalarFromUint64(group, 1)
	for i := n - 1; i > 0; i-- {
		v[i-1] = group.NewScalar().Set(uPrime[i]).Mul(v[i])
	}

	rBar := group.NewScalar()
	rHatSum := group.NewScalar()
	rTilde := group.NewScalar()
	rPrimeSum := group.NewScalar()
	for i := 0; i < n; i++ {
		rBar.Add(r[i])
		rHatSum.Add(group.NewScalar().Set(rHat[i]).Mul(v[i]))
		rTilde.Add(group.NewScalar().Set(r[i]).Mul(u[i]))
		rPrimeSum.Add(group.NewScalar().Set(rPrime[i]).Mul(uPrime[i]))
	}

	c1s := make([]curve.Point, n)
	c2s := make([]curve.Point, n)
	for i, e := range public.Output {
		c1s[i], c2s[i] = e.C1, e.C2
	}
	omega4 := group.NewScalar().Set(omega[3]).Negate()
	proof := &Proof{
		group: group,
		C:     C,
		CHat:  CHat,
		T1:    omega[0].ActOnBase(),
		T2:    omega[1].ActOnBase(),
		T3:    omega[2].ActOnBase().Add(msm(pl, group, omegaPrime, gens.Hs)),
		T4C1:  omega4.Act(G).Add(msm(pl, group, omegaPrime, c1s)),
		T4C2:  omega4.Act(public.PublicKey).Add(msm(pl, group, omegaPrime, c2s)),
		THat: parallelPoints(pl, n, func(i int) curve.Point {
			return omegaHat[i].ActOnBase().Add(omegaPrime[i].Act(chainAt(gens, CHat, i-1)))
		}),
	}

	e, err := challenge(hash, group, proof)
	if err != nil {
		return nil, err
	}
	respond := func(w, x curve.Scalar) curve.Scalar {
		return group.NewScalar().Set(e).Mul(x).Add(w)
	}
	proof.S1 = respond(omega[0], rBar)
	proof.S2 = respond(omega[1], rHatSum)
	proof.S3 = respond(omega[2], rTilde)
	proof.S4 = respond(omega[3], rPrimeSum)
	proof.SHat = make([]curve.Scalar, n)
	proof.SPrime = make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		proof.SHat[i] = respond(omegaHat[i], rHat[i])
		proof.SPrime[i] = respond(omegaPrime[i], uPrime[i])
	}
	return proof, nil
}

func (p *Proof) Verify(hash *hash.Hash, public Public, pl *pool.Pool) bool {
	if !p.IsValid(public) {
		return false
	}
	group := p.group
	n := len(public.Input)
	gens := public.Generators

	if err := writePublic(hash, public); err != nil {
		return false
	}
	u, err := challenges(hash, group, p.C, n)
	if err != nil {
		return false
	}
	e, err := challenge(hash, group, p)
	if err != nil {
		return false
	}
	minusE := group.NewScalar().Set(e).Negate()

	// c̄ = ∑ cⱼ - ∑ Hᵢ
	cBar := curve.Sum(group, p.C...).Sub(curve.Sum(group, gens.Hs...))
	// ĉ = ĉ_{N-1} - (∏ uᵢ)⋅H
	uProd := curve.ScalarFromUint64(group, 1)
	for _, ui := range u {
		uProd.Mul(ui)
	}
	cHat := p.CHat[n-1].Sub(uProd.Act(gens.H))
	// c̃ = ∑ uⱼ⋅cⱼ
	cTilde := msm(pl, group, u, p.C)

	inC1 := make([]curve.Point, n)
	inC2 := make([]curve.Point, n)
	outC1 := make([]curve.Point, n)
	outC2 := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		inC1[i], inC2[i] = public.Input[i].C1, public.Input[i].C2
		outC1[i], outC2[i] = public.Output[i].C1, public.Output[i].C2
	}
	minusS4 := group.NewScalar().Set(p.S4).Negate()

	{
		// t₁ = s₁⋅G - e⋅c̄
		rhs := p.S1.ActOnBase().Add(minusE.Act(cBar))
		if !p.T1.Equal(rhs) {
			return false
		}
	}

	{
		// t₂ = s₂⋅G - e⋅ĉ
		rhs := p.S2.ActOnBase().Add(minusE.Act(cHat))
		if !p.T2.Equal(rhs) {
			return false
		}
	}

	{
		// t₃ = s₃⋅G + ∑ s'ᵢ⋅Hᵢ - e⋅c̃
		rhs := p.S3.ActOnBase().Add(msm(pl, group, p.SPrime, gens.Hs)).Add(minusE.Act(cTilde))
		if !p.T3.Equal(rhs) {
			return false
		}
	}

	{
		// t₄ = ∑ s'ᵢ⋅e'ᵢ - Enc(0; s₄) - e⋅∑ uⱼ⋅eⱼ
		rhs1 := msm(pl, group, p.SPrime, outC1).Add(minusS4.ActOnBase()).Add(minusE.Act(msm(pl, group, u, inC1)))
		if !p.T4C1.Equal(rhs1) {
			return false
		}
		rhs2 := msm(pl, group, p.SPrime, outC2).Add(minusS4.Act(public.PublicKey)).Add(minusE.Act(msm(pl, group, u, inC2)))
		if !p.T4C2.Equal(rhs2) {
			return false
		}
	}

	// t̂ᵢ = ŝᵢ⋅G + s'ᵢ⋅ĉᵢ₋₁ - e⋅ĉᵢ
	results := pl.Parallelize(n, func(i int) interface{} {
		rhs := p.SHat[i].ActOnBase().Add(p.SPrime[i].Act(chainAt(gens, p.CHat, i-1))).Add(minusE.Act(p.CHat[i]))
		return p.THat[i].Equal(rhs)
	})
	for _, ok := range results {
		if !ok.(bool) {
			return false
		}
	}

	return true
}

func chainAt(gens *Generators, CHat []curve.Point, i int) curve.Point {
	if i < 0 {
		return gens.H
	}
	return CHat[i]
}

func writePublic(hash *hash.Hash, public Public) error {
	if err := hash.WriteAny(public.PublicKey, public.Generators.H); err != nil {
		return err
	}
	for _, e := range public.Input {
		if err := hash.WriteAny(e); err != nil {
			return err
		}
	}
	for _, e := range public.Output {
		if err := hash.WriteAny(e); err != nil {
			return err
		}
	}
	return nil
}

// challenges derives u₀, …, u_{N-1} from the public values and the permutation commitment.
func challenges(hash *hash.Hash, group curve.Curve, C []curve.Point, n int) ([]curve.Scalar, error) {
	h := hash.Clone()
	if err := h.WriteAny("permutation challenges"); err != nil {
		return nil, err
	}
	for _, c := range C {
		if err := h.WriteAny(c); err != nil {
			return nil, err
		}
	}
	return sample.Scalars(h.Digest(), group, n)
}

func challenge(hash *hash.Hash, group curve.Curve, proof *Proof) (curve.Scalar, error) {
	if err := hash.WriteAny("sigma challenge"); err != nil {
		return nil, err
	}
	points := make([]curve.Point, 0, 3*len(proof.C)+5)
	points = append(points, proof.C...)
	points = append(points, proof.CHat...)
	points = append(points, proof.T1, proof.T2, proof.T3, proof.T4C1, proof.T4C2)
	points = append(points, proof.THat...)
	for _, pt := range points {
		if err := hash.WriteAny(pt); err != nil {
			return nil, err
		}
	}
	return sample.Scalar(hash.Digest(), group)
}

func parallelPoints(pl *pool.Pool, n int, f func(int) curve.Point) []curve.Point {
	results := pl.Parallelize(n, func(i int) interface{} {
		return f(i)
	})
	out := make([]curve.Point, n)
	for i, r := range results {
		out[i] = r.(curve.Point)
	}
	return out
}

// msm returns ∑ scalars[i]⋅points[i], computing the products in parallel.
func msm(pl *pool.Pool, group curve.Curve, scalars []curve.Scalar, points []curve.Point) curve.Point {
	products := parallelPoints(pl, len(points), func(i int) curve.Point {
		return scalars[i].Act(points[i])
	})
	return curve.Sum(group, products...)
}
