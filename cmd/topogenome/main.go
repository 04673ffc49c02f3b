// Command topogenome is the CLI external collaborator summarising the
// three exclusive forms of §6: analyse a crystal's genome against an
// archive, create a fresh archive from a named built-in net, or delete an
// archive. Grounded on cmd/go2x3/main.go's flag.FlagSet + klog wiring; no
// cobra/kong here either, matching what the teacher actually ships rather
// than its commented-out kong experiment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/fine-structures/topo-genome/archive"
	"github.com/fine-structures/topo-genome/genome"
	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

// cliContext returns the cancellation context passed to ComputeGenome; the
// CLI runs a single synchronous command per invocation, so there is no
// signal source to wire in beyond context.Background().
func cliContext() context.Context {
	return context.Background()
}

// builtins maps a handful of named nets (§8's literal scenarios) to genome
// strings listing each of their edges once (runCreateFromBuiltin recomputes
// the canonical genome from them), standing in for the external bonding/CIF
// pipeline that would ordinarily produce a CrystalNet -- out of the core's
// scope per §6 ("No file I/O").
var builtins = map[string]string{
	"pcu": "3 1 1 1 0 0 1 1 0 1 0 1 1 0 0 1",
	"dia": "3 1 2 0 0 0 1 2 1 0 0 1 2 0 1 0 1 2 0 0 1",
}

func main() {
	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("topogenome", flag.ExitOnError)
	klog.InitFlags(fset)
	archivePath := fset.String("archive", "", "badger archive directory (empty = in-memory)")
	minimize := fset.Bool("minimize", true, "run minimize before computing the genome")
	update := fset.Bool("update", false, "analyse: register the computed genome under --name")
	remove := fset.Bool("remove", false, "analyse: remove the computed genome's archive entry")
	name := fset.String("name", "", "analyse --update: topology name to register")
	force := fset.Bool("force", false, "tolerate an archive generator-version mismatch")
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
	fset.Parse(os.Args[1:])

	if fset.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: topogenome <analyse|create-from-builtin|delete> <arg> [flags]")
		os.Exit(genome.ExitCode(genome.ErrInvalidInput))
	}

	var err error
	switch fset.Arg(0) {
	case "analyse":
		err = runAnalyse(fset.Arg(1), *archivePath, *minimize, *update, *remove, *name, *force)
	case "create-from-builtin":
		err = runCreateFromBuiltin(fset.Arg(1), *archivePath, *force)
	case "delete":
		err = runDelete(*archivePath)
	default:
		err = genome.ErrInvalidInput
	}

	klog.Flush()
	os.Exit(genome.ExitCode(err))
}

// runAnalyse decodes a genome string (the CLI's stand-in for the external
// crystal-parsing collaborator named in §1), recomputes its canonical
// genome, looks it up in the archive, and optionally updates it.
func runAnalyse(genomeStr, archivePath string, minimize, update, remove bool, name string, force bool) error {
	if genomeStr == "" {
		return genome.ErrInvalidInput
	}

	net, err := netFromGenomeString(genomeStr)
	if err != nil {
		return err
	}

	driver := genome.NewDriver()
	driver.Minimize = minimize
	result, err := driver.ComputeGenome(cliContext(), genome.NewContext(), net)
	if err != nil {
		return err
	}

	a, err := archive.Open(archive.Options{Path: archivePath, IgnoreVersion: force})
	if err != nil {
		return err
	}
	defer a.Close()

	switch {
	case remove:
		if err := a.Delete(result.String); err != nil {
			return err
		}
		fmt.Println("removed")
		return nil
	case update:
		if name == "" {
			return genome.ErrInvalidInput
		}
		if err := a.Put(result.String, name); err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	default:
		topology, err := a.Lookup(result.String)
		if err != nil {
			if errors.Cause(err) == archive.ErrNotFound {
				fmt.Println("UNKNOWN")
				return genome.ErrUnknownGenome
			}
			return err
		}
		fmt.Println(topology)
		return nil
	}
}

// runCreateFromBuiltin computes and registers the genome for a named
// built-in net, creating archivePath fresh if it does not yet exist.
func runCreateFromBuiltin(builtinName, archivePath string, force bool) error {
	genomeStr, ok := builtins[builtinName]
	if !ok {
		return genome.ErrInvalidInput
	}

	net, err := netFromGenomeString(genomeStr)
	if err != nil {
		return err
	}
	result, err := genome.NewDriver().ComputeGenome(cliContext(), genome.NewContext(), net)
	if err != nil {
		return err
	}

	a, err := archive.Open(archive.Options{Path: archivePath, IgnoreVersion: force})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Put(result.String, builtinName); err != nil {
		return err
	}
	fmt.Println(result.String)
	return nil
}

// runDelete removes an on-disk archive directory wholesale.
func runDelete(archivePath string) error {
	if archivePath == "" {
		return genome.ErrInvalidInput
	}
	if err := os.RemoveAll(archivePath); err != nil {
		return genome.ErrInternal
	}
	fmt.Println("deleted")
	return nil
}

// netFromGenomeString decodes s into edges and wraps them in an
// identity-cell CrystalNet -- the CLI-level substitute for the external
// bonding/CIF parser §1 places outside the core.
func netFromGenomeString(s string) (*genome.CrystalNet, error) {
	_, edgeTuples, err := genome.Decode(s)
	if err != nil {
		return nil, err
	}

	n := 0
	var edges []pgraph.Edge
	for _, e := range edgeTuples {
		if int(e.S) > n {
			n = int(e.S)
		}
		if int(e.D) > n {
			n = int(e.D)
		}
		edges = append(edges, pgraph.Edge{Src: e.S, Dst: e.D, Ofs: e.Ofs})
	}
	g, err := pgraph.FromEdges(n, edges)
	if err != nil {
		return nil, genome.ErrInvalidInput
	}

	cell, err := genome.NewCell(rational.Identity3())
	if err != nil {
		return nil, err
	}
	return genome.BuildCrystalNet(cell, g, nil, rational.DefaultBudget)
}
