package ctu

import (
	"time"

	"github.com/cenkalti/backoff"
	"github.com/cpmech/gosl/mpi"
	"github.com/pkg/errors"
)

// mpiExchanger is the production Exchanger, grounded on gofem's
// fem/main.go and fem/fem.go use of mpi.IsOn/Rank/Size to decide
// whether a run is distributed at all. Unlike gofem's FEM assembly
// (which only needs rank/size bookkeeping), a CTU step must actually
// move ghost-zone data between ranks every sweep, so this type adds
// the point-to-point send/recv gofem never needed.
type mpiExchanger struct {
	comm *mpi.Communicator
}

// NewMPIExchanger starts the MPI runtime (a no-op if it is already
// running under mpirun) and returns a communicator. The handshake is
// retried with backoff, per SPEC_FULL.md's ambient-stack note that
// setup-time MPI initialization, unlike a mid-step exchange failure,
// may legitimately be retried before the run is declared unable to
// start.
func NewMPIExchanger() (*mpiExchanger, error) {
	var comm *mpi.Communicator
	op := func() error {
		if !mpi.IsOn() {
			mpi.Start(false)
		}
		comm = mpi.NewCommunicator(nil)
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 5 * time.Second
	if err := backoff.Retry(op, b); err != nil {
		return nil, errors.Wrap(err, "ctu: mpi handshake failed")
	}
	return &mpiExchanger{comm: comm}, nil
}

func (m *mpiExchanger) Rank() int { return mpi.Rank() }

// SendRecv exchanges one face's ghost-layer buffer with the neighbor
// in direction dim/toward. "out" has already been packed by
// packGhostLayer; "in" is filled with the neighbor's matching layer.
// Exchange failure mid-step is always fatal (spec.md §7); the caller,
// Exchange, panics with this error rather than retrying it or turning
// it into a BadState.
func (m *mpiExchanger) SendRecv(g *Grid, dim int, toward bool, out, in []float64) error {
	peer := peerRank(g, dim, toward)
	if peer < 0 {
		return errors.Errorf("ctu: SendRecv called with no neighbor on dim %d toward=%v", dim, toward)
	}
	if err := m.comm.Send(out, peer); err != nil {
		return errors.Wrapf(err, "ctu: send to rank %d failed", peer)
	}
	if err := m.comm.Recv(in, peer); err != nil {
		return errors.Wrapf(err, "ctu: recv from rank %d failed", peer)
	}
	return nil
}

func peerRank(g *Grid, dim int, toward bool) int {
	switch {
	case dim == 0 && toward:
		return g.Rx1
	case dim == 0 && !toward:
		return g.Lx1
	case dim == 1 && toward:
		return g.Rx2
	case dim == 1 && !toward:
		return g.Lx2
	case dim == 2 && toward:
		return g.Rx3
	default:
		return g.Lx3
	}
}

// Exchange packs and trades the ghost layers for direction dim with
// whichever of the two neighbors exist, in the fixed component order
// spec.md §6 specifies: d, M1, M2, M3, then (if MHD) B1c, B2c, B3c,
// B1i, B2i, B3i, then (if present) E, then the NScalars entries. The
// receive-then-send order follows spec.md §4.4's non-blocking-receive-
// then-blocking-send-then-wait protocol; Go's synchronous SendRecv
// already serializes this per peer, so the two directions here simply
// run one after the other instead of needing an explicit wait handle.
func Exchange(g *Grid, cfg Config, ex Exchanger, dim int) {
	ng := g.NGhost
	nPlane := planeSize(g, dim)
	ncomp := componentsPerCell(cfg)

	if peer := peerRank(g, dim, false); peer >= 0 {
		out := make([]float64, nPlane*ncomp*ng)
		in := make([]float64, nPlane*ncomp*ng)
		packBoundaryLayer(g, cfg, dim, true, out)
		if err := ex.SendRecv(g, dim, false, out, in); err != nil {
			panic(err)
		}
		unpackGhostLayer(g, cfg, dim, true, in)
	}
	if peer := peerRank(g, dim, true); peer >= 0 {
		out := make([]float64, nPlane*ncomp*ng)
		in := make([]float64, nPlane*ncomp*ng)
		packBoundaryLayer(g, cfg, dim, false, out)
		if err := ex.SendRecv(g, dim, true, out, in); err != nil {
			panic(err)
		}
		unpackGhostLayer(g, cfg, dim, false, in)
	}
}

func componentsPerCell(cfg Config) int {
	n := 4 // d, m1, m2, m3
	if cfg.MHD {
		n += 6 // b1c,b2c,b3c,b1i,b2i,b3i
	}
	if !cfg.Isothermal {
		n++
	}
	n += cfg.NScalars
	return n
}

func planeSize(g *Grid, dim int) int {
	switch dim {
	case 0:
		return g.Nx2 * g.Nx3
	case 1:
		return g.Nx1 * g.Nx3
	default:
		return g.Nx1 * g.Nx2
	}
}

// packBoundaryLayer serializes the NGhost active-zone planes nearest
// the named face (the data the neighbor needs as its ghost layer),
// innerFace selecting the low-index face.
func packBoundaryLayer(g *Grid, cfg Config, dim int, innerFace bool, out []float64) {
	ng := g.NGhost
	n := 0
	visitBoundaryPlanes(g, dim, innerFace, ng, func(i, j, k int) {
		n = packCell(g, cfg, i, j, k, out, n)
	})
}

func unpackGhostLayer(g *Grid, cfg Config, dim int, innerFace bool, in []float64) {
	ng := g.NGhost
	n := 0
	visitGhostPlanes(g, dim, innerFace, ng, func(gh, i, j, k int) {
		// spec.md §4.4: the x1 outer-face B1i ghost at gh==1 (i ==
		// ie+1) names the same interface as the neighbor's first
		// active face; CT already owns it locally, so the exchange
		// must not clobber it even though every other component at
		// that plane is replaced.
		skipB1i := dim == 0 && !innerFace && gh == 1
		n = unpackCell(g, cfg, i, j, k, in, n, skipB1i)
	})
}

func visitBoundaryPlanes(g *Grid, dim int, innerFace bool, ng int, fn func(i, j, k int)) {
	for gh := 0; gh < ng; gh++ {
		switch dim {
		case 0:
			i := g.Is + gh
			if !innerFace {
				i = g.Ie - gh
			}
			for k := g.Ks; k <= g.Ke; k++ {
				for j := g.Js; j <= g.Je; j++ {
					fn(i, j, k)
				}
			}
		case 1:
			j := g.Js + gh
			if !innerFace {
				j = g.Je - gh
			}
			for k := g.Ks; k <= g.Ke; k++ {
				for i := g.Is; i <= g.Ie; i++ {
					fn(i, j, k)
				}
			}
		default:
			k := g.Ks + gh
			if !innerFace {
				k = g.Ke - gh
			}
			for j := g.Js; j <= g.Je; j++ {
				for i := g.Is; i <= g.Ie; i++ {
					fn(i, j, k)
				}
			}
		}
	}
}

func visitGhostPlanes(g *Grid, dim int, innerFace bool, ng int, fn func(gh, i, j, k int)) {
	for gh := 1; gh <= ng; gh++ {
		switch dim {
		case 0:
			i := g.Is - gh
			if !innerFace {
				i = g.Ie + gh
			}
			for k := g.Ks; k <= g.Ke; k++ {
				for j := g.Js; j <= g.Je; j++ {
					fn(gh, i, j, k)
				}
			}
		case 1:
			j := g.Js - gh
			if !innerFace {
				j = g.Je + gh
			}
			for k := g.Ks; k <= g.Ke; k++ {
				for i := g.Is; i <= g.Ie; i++ {
					fn(gh, i, j, k)
				}
			}
		default:
			k := g.Ks - gh
			if !innerFace {
				k = g.Ke + gh
			}
			for j := g.Js; j <= g.Je; j++ {
				for i := g.Is; i <= g.Ie; i++ {
					fn(gh, i, j, k)
				}
			}
		}
	}
}

func packCell(g *Grid, cfg Config, i, j, k int, out []float64, n int) int {
	c := g.U.At(i, j, k)
	out[n] = c.D
	n++
	out[n] = c.M1
	n++
	out[n] = c.M2
	n++
	out[n] = c.M3
	n++
	if cfg.MHD {
		out[n] = c.B1c
		n++
		out[n] = c.B2c
		n++
		out[n] = c.B3c
		n++
		out[n] = g.B1i.At(i, j, k)
		n++
		out[n] = g.B2i.At(i, j, k)
		n++
		out[n] = g.B3i.At(i, j, k)
		n++
	}
	if !cfg.Isothermal {
		out[n] = c.E
		n++
	}
	for s := 0; s < cfg.NScalars; s++ {
		out[n] = c.S[s]
		n++
	}
	return n
}

func unpackCell(g *Grid, cfg Config, i, j, k int, in []float64, n int, skipB1i bool) int {
	var c Cons
	c.D = in[n]
	n++
	c.M1 = in[n]
	n++
	c.M2 = in[n]
	n++
	c.M3 = in[n]
	n++
	if cfg.MHD {
		c.B1c = in[n]
		n++
		c.B2c = in[n]
		n++
		c.B3c = in[n]
		n++
		b1i := in[n]
		n++
		b2i := in[n]
		n++
		b3i := in[n]
		n++
		if !skipB1i {
			g.B1i.Set(i, j, k, b1i)
		}
		g.B2i.Set(i, j, k, b2i)
		g.B3i.Set(i, j, k, b3i)
	}
	if !cfg.Isothermal {
		c.E = in[n]
		n++
	}
	if cfg.NScalars > 0 {
		c.S = make([]float64, cfg.NScalars)
		for s := 0; s < cfg.NScalars; s++ {
			c.S[s] = in[n]
			n++
		}
	}
	g.U.Set(i, j, k, c)
	return n
}

// AllreduceMinDt reduces a locally CFL-limited step size to the
// process-wide minimum, spec.md §5's "global minimum across all
// tiles". A single-rank run (mpi.IsOn() false) returns localDt
// unchanged.
func AllreduceMinDt(ex Exchanger, localDt float64) float64 {
	m, ok := ex.(*mpiExchanger)
	if !ok || !mpi.IsOn() {
		return localDt
	}
	return m.comm.AllReduceMin(localDt)
}
