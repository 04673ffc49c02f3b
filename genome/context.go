package genome

import (
	"github.com/fine-structures/topo-genome/rational"
)

// ClusterMode is the atom-clustering strategy used by the external
// collaborator that builds a CrystalNet (§9's "Polymorphism" note): a
// tagged variant, not a subclass hierarchy.
type ClusterMode int

const (
	ClusterInput ClusterMode = iota
	ClusterEachAtom
	ClusterMOF
	ClusterGuess
	ClusterAuto
)

// BondingMode is the bond-inference strategy, likewise a tagged variant.
type BondingMode int

const (
	BondingInput BondingMode = iota
	BondingExternal
	BondingAuto
)

// Flags holds the feature toggles named in §9 ("warnings on/off, export
// on/off"), carried explicitly rather than as process-wide globals.
type Flags struct {
	WarningsEnabled bool
	ExportEnabled   bool
}

// Context is the explicit configuration object threaded through every
// exported Driver operation: no archive handle, budget, or logging
// verbosity is ever held in a package-level variable, mirroring
// go2x3.CatalogContext being passed explicitly through the teacher's
// Catalog API rather than being a package singleton. Logging itself goes
// through klog's global, level-gated calls (klog.V(n).Infof, as
// cmd/topogenome configures via klog.InitFlags) the way the teacher's CLI
// does -- Context.LogLevel only selects the verbosity threshold a given
// Driver call logs at.
type Context struct {
	Budget   rational.Budget
	Flags    Flags
	LogLevel int

	Cluster ClusterMode
	Bonding BondingMode
}

// NewContext returns a Context with the default budget and verbosity.
func NewContext() *Context {
	return &Context{
		Budget:   rational.DefaultBudget,
		Flags:    Flags{WarningsEnabled: true, ExportEnabled: true},
		LogLevel: 2,
		Cluster:  ClusterAuto,
		Bonding:  BondingAuto,
	}
}
