package archive

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// textFile is the participle grammar for the §6 archive text interchange
// format: a "Made by <tool> vX.Y.Z" header followed by blank-separated
// key/id records. Grounded on lib2x3/tags-graph/mesh.grammar.go's
// lexer.MustSimple + participle.Lexer pattern.
type textFile struct {
	Header  *header   `@@`
	Records []*record `@@*`
}

type header struct {
	Tool    string `"Made" "by" @Ident`
	Version string `@Version`
}

type record struct {
	KeyInts []int64 `"key" @Int+`
	ID      string  `"id" @Ident`
}

// archiveLexer tokenises the text format. Version is matched whole
// (including its "v" prefix) so it cannot be swallowed by the broader
// Ident rule; ImportText strips the leading "v" when comparing against
// Version, and ExportText writes it in front of Version. A genome key is a run of whitespace-separated signed
// integers, tokenised the same way as genome/codec.go's genomeLexer.
// Ident also accepts a ", "-joined run of words so a merged topology name
// (archive.mergeNames's output) round-trips through the text format intact.
var archiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Version", Pattern: `v[0-9]+\.[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.\-]*(,\s[a-zA-Z_][a-zA-Z0-9_.\-]*)*`},
	{Name: "whitespace", Pattern: `[ \t\n\r]+`},
})

var archiveParser = participle.MustBuild[textFile](participle.Lexer(archiveLexer))

// ExportText writes every entry of a to w in the §6 text interchange
// format.
func ExportText(a *Archive, w io.Writer, toolName string) error {
	if _, err := fmt.Fprintf(w, "Made by %s v%s\n\n", toolName, Version); err != nil {
		return err
	}
	var writeErr error
	err := a.Select(0, 1<<30, func(key, name string) bool {
		if _, err := fmt.Fprintf(w, "key %s\nid  %s\n\n", key, name); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return writeErr
}

// ImportText reads a §6 text archive from r and loads its records into a.
// If the header's version differs from Version, ImportText fails with
// ErrVersionMismatch unless a.opts.IgnoreVersion is set.
func ImportText(a *Archive, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	parsed, err := archiveParser.ParseString("", string(data))
	if err != nil {
		return errors.Wrap(err, "archive: malformed text file")
	}

	gotVersion := strings.TrimPrefix(parsed.Header.Version, "v")
	if gotVersion != Version {
		if !a.opts.IgnoreVersion {
			return errors.Wrapf(ErrVersionMismatch, "archive was made by v%s, expected v%s", gotVersion, Version)
		}
		klog.Warningf("archive: importing v%s file into a v%s store (IgnoreVersion set)", gotVersion, Version)
	}

	for _, rec := range parsed.Records {
		key := joinInts(rec.KeyInts)
		if err := a.Put(key, rec.ID); err != nil {
			return err
		}
	}
	return nil
}

// joinInts renders a parsed key's integer tokens back into the same
// space-separated genome string form ExportText wrote.
func joinInts(ints []int64) string {
	parts := make([]string, len(ints))
	for i, n := range ints {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, " ")
}
