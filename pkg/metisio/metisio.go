// Package metisio reads and writes graphs and partition vectors in the
// METIS text formats.
//
// A graph file starts with a header line "n m [fmt [ncon]]" followed by one
// line per vertex listing its neighbors, 1-indexed. The fmt field is up to
// three digits: the ones digit enables edge weights, the tens digit vertex
// weights, the hundreds digit vertex sizes (not supported here). Lines
// starting with '%' are comments. A partition file holds one part number
// per line, one line per vertex.
package metisio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/errors"
)

// maxLineBytes bounds a single input line; dense vertices in large graphs
// can exceed bufio.Scanner's 64K default.
const maxLineBytes = 16 * 1024 * 1024

// header carries the parsed first line of a graph file.
type header struct {
	n       int
	m       int
	hasVwgt bool
	hasEwgt bool
}

// ReadGraph parses a METIS graph file from r and returns a validated graph.
//
// Returns INVALID_FORMAT for malformed input, UNSUPPORTED for multi-
// constraint or vertex-size files, and INVALID_GRAPH when the described
// adjacency violates the container's invariants.
func ReadGraph(r io.Reader) (*csr.Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	hdr, err := readHeader(sc)
	if err != nil {
		return nil, err
	}

	xadj := make([]int, hdr.n+1)
	adjncy := make([]int, 0, 2*hdr.m)
	var vwgt, adjwgt []int64
	if hdr.hasVwgt {
		vwgt = make([]int64, 0, hdr.n)
	}
	if hdr.hasEwgt {
		adjwgt = make([]int64, 0, 2*hdr.m)
	}

	for u := 0; u < hdr.n; u++ {
		// Blank lines are significant here: an isolated vertex is an
		// empty line.
		fields, err := nextDataLine(sc)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "expected %d vertex lines, got %d", hdr.n, u)
		}
		i := 0
		if hdr.hasVwgt {
			if len(fields) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "vertex %d: missing weight", u+1)
			}
			w, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "vertex %d: bad weight %q", u+1, fields[0])
			}
			vwgt = append(vwgt, w)
			i = 1
		}
		for i < len(fields) {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "vertex %d: bad neighbor %q", u+1, fields[i])
			}
			if v < 1 || v > hdr.n {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "vertex %d: neighbor %d out of range [1, %d]", u+1, v, hdr.n)
			}
			adjncy = append(adjncy, v-1)
			i++
			if hdr.hasEwgt {
				if i >= len(fields) {
					return nil, errors.New(errors.ErrCodeInvalidFormat, "vertex %d: neighbor %d has no edge weight", u+1, v)
				}
				w, err := strconv.ParseInt(fields[i], 10, 64)
				if err != nil {
					return nil, errors.New(errors.ErrCodeInvalidFormat, "vertex %d: bad edge weight %q", u+1, fields[i])
				}
				adjwgt = append(adjwgt, w)
				i++
			}
		}
		xadj[u+1] = len(adjncy)
	}

	if len(adjncy) != 2*hdr.m {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "header declares %d edges but lines list %d directed entries", hdr.m, len(adjncy))
	}

	g, err := csr.New(hdr.n, xadj, adjncy)
	if err != nil {
		return nil, err
	}
	if hdr.hasVwgt {
		if g, err = g.WithVertexWeights(vwgt); err != nil {
			return nil, err
		}
	}
	if hdr.hasEwgt {
		if g, err = g.WithEdgeWeights(adjwgt); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ReadGraphFile reads a METIS graph file from disk.
func ReadGraphFile(path string) (*csr.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "graph file %s not found", path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadGraph(f)
}

// WriteGraph writes g in METIS graph format. The fmt field is emitted only
// when weights are present, matching what the standard tools produce.
func WriteGraph(w io.Writer, g *csr.Graph) error {
	bw := bufio.NewWriter(w)

	flags := ""
	switch {
	case g.HasVertexWeights() && g.HasEdgeWeights():
		flags = " 011"
	case g.HasVertexWeights():
		flags = " 010"
	case g.HasEdgeWeights():
		flags = " 001"
	}
	if _, err := fmt.Fprintf(bw, "%d %d%s\n", g.N(), g.M(), flags); err != nil {
		return err
	}

	for u := 0; u < g.N(); u++ {
		first := true
		if g.HasVertexWeights() {
			if _, err := fmt.Fprintf(bw, "%d", g.VertexWeight(u)); err != nil {
				return err
			}
			first = false
		}
		for v, wt := range g.Neighbors(u) {
			if !first {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			first = false
			if _, err := fmt.Fprintf(bw, "%d", v+1); err != nil {
				return err
			}
			if g.HasEdgeWeights() {
				if _, err := fmt.Fprintf(bw, " %d", wt); err != nil {
					return err
				}
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteGraphFile writes g to a METIS graph file on disk.
func WriteGraphFile(path string, g *csr.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteGraph(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadPartition parses a partition vector with one part id per line.
// n gives the expected vertex count; a mismatch is INVALID_FORMAT.
func ReadPartition(r io.Reader, n int) ([]int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	part := make([]int, 0, n)
	for {
		fields, err := nextLine(sc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(fields) != 1 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected one part id, got %d fields", len(part)+1, len(fields))
		}
		p, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: bad part id %q", len(part)+1, fields[0])
		}
		part = append(part, p)
	}
	if len(part) != n {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "partition has %d entries, want %d", len(part), n)
	}
	return part, nil
}

// ReadPartitionFile reads a partition vector from disk.
func ReadPartitionFile(path string, n int) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "partition file %s not found", path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadPartition(f, n)
}

// WritePartition writes the partition vector, one part id per line.
func WritePartition(w io.Writer, part []int) error {
	bw := bufio.NewWriter(w)
	for _, p := range part {
		if _, err := fmt.Fprintf(bw, "%d\n", p); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePartitionFile writes a partition vector to disk.
func WritePartitionFile(path string, part []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePartition(f, part); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readHeader parses the "n m [fmt [ncon]]" line.
func readHeader(sc *bufio.Scanner) (header, error) {
	fields, err := nextLine(sc)
	if err != nil {
		return header{}, errors.New(errors.ErrCodeInvalidFormat, "missing header line")
	}
	if len(fields) < 2 || len(fields) > 4 {
		return header{}, errors.New(errors.ErrCodeInvalidFormat, "header must be \"n m [fmt [ncon]]\", got %d fields", len(fields))
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return header{}, errors.New(errors.ErrCodeInvalidFormat, "bad vertex count %q", fields[0])
	}
	m, err := strconv.Atoi(fields[1])
	if err != nil || m < 0 {
		return header{}, errors.New(errors.ErrCodeInvalidFormat, "bad edge count %q", fields[1])
	}

	hdr := header{n: n, m: m}
	if len(fields) >= 3 {
		f := fields[2]
		if len(f) > 3 || strings.Trim(f, "01") != "" {
			return header{}, errors.New(errors.ErrCodeInvalidFormat, "bad fmt field %q", f)
		}
		f = strings.Repeat("0", 3-len(f)) + f
		if f[0] == '1' {
			return header{}, errors.New(errors.ErrCodeUnsupported, "vertex sizes are not supported")
		}
		hdr.hasVwgt = f[1] == '1'
		hdr.hasEwgt = f[2] == '1'
	}
	if len(fields) == 4 {
		ncon, err := strconv.Atoi(fields[3])
		if err != nil {
			return header{}, errors.New(errors.ErrCodeInvalidFormat, "bad ncon field %q", fields[3])
		}
		if ncon > 1 {
			return header{}, errors.New(errors.ErrCodeUnsupported, "multi-constraint graphs (ncon=%d) are not supported", ncon)
		}
	}
	return hdr, nil
}

// nextLine returns the fields of the next non-comment, non-blank line, or
// io.EOF when the input is exhausted. Comment lines start with '%'.
func nextLine(sc *bufio.Scanner) ([]string, error) {
	for {
		fields, err := nextDataLine(sc)
		if err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			return fields, nil
		}
	}
}

// nextDataLine returns the fields of the next non-comment line. Blank
// lines come back as an empty slice.
func nextDataLine(sc *bufio.Scanner) ([]string, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "%") {
			continue
		}
		return strings.Fields(line), nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
