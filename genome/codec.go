package genome

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/fine-structures/topo-genome/candidatekey"
	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

// Encode serialises edges as the canonical genome string of §6:
// "D s1 d1 ox oy oz s2 d2 ..." with D=3 and whitespace separation.
func Encode(edges []candidatekey.EdgeTuple) string {
	var b strings.Builder
	b.WriteString("3")
	for _, e := range edges {
		fmt.Fprintf(&b, " %d %d %d %d %d", e.S, e.D, e.Ofs[0], e.Ofs[1], e.Ofs[2])
	}
	return b.String()
}

// genomeLexer tokenises the genome string as whitespace-separated signed
// integers, grounded on lib2x3/tags-graph/mesh.grammar.go's
// lexer.MustSimple + participle.Lexer pattern.
var genomeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "whitespace", Pattern: `\s+`},
})

// genomeExpr is the participle grammar for the genome string: a leading
// dimension token followed by zero or more edge quintuples.
type genomeExpr struct {
	Dim   int64        `@Int`
	Edges []*edgeToken `@@*`
}

type edgeToken struct {
	S  int64 `@Int`
	D  int64 `@Int`
	Ox int64 `@Int`
	Oy int64 `@Int`
	Oz int64 `@Int`
}

var genomeParser = participle.MustBuild[genomeExpr](participle.Lexer(genomeLexer))

// Decode parses a genome string back into its dimension and edge list, the
// inverse of Encode, used for P4 round-trip testing and for archive key
// fields.
func Decode(s string) (dim int, edges []candidatekey.EdgeTuple, err error) {
	expr, perr := genomeParser.ParseString("", s)
	if perr != nil {
		return 0, nil, errors.Wrap(ErrParse, perr.Error())
	}
	if expr.Dim != 3 {
		return 0, nil, errors.Wrapf(ErrNotThreeDimensional, "unsupported dimension %d", expr.Dim)
	}
	out := make([]candidatekey.EdgeTuple, len(expr.Edges))
	for i, e := range expr.Edges {
		out[i] = candidatekey.EdgeTuple{
			S:   pgraph.VtxID(e.S),
			D:   pgraph.VtxID(e.D),
			Ofs: rational.Vec3{e.Ox, e.Oy, e.Oz},
		}
	}
	return int(expr.Dim), out, nil
}
