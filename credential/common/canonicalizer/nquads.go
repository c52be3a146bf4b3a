package canonicalizer

import (
	"sort"
	"strings"

	"github.com/piprate/json-gold/ld"
)

const (
	xsdString     = "http://www.w3.org/2001/XMLSchema#string"
	defaultGraph  = "@default"
	blankNodeMark = "_:"
)

type termKind int

const (
	iriTerm termKind = iota
	blankTerm
	literalTerm
)

// term is an RDF term. Blank node values are stored without the "_:" prefix.
type term struct {
	kind     termKind
	value    string
	datatype string
	language string
}

type quad struct {
	subject   term
	predicate term
	object    term
	graph     *term
}

// blankNodes returns the distinct blank node identifiers used by q.
func (q *quad) blankNodes() []string {
	var ids []string
	for _, t := range []*term{&q.subject, &q.object, q.graph} {
		if t == nil || t.kind != blankTerm {
			continue
		}
		seen := false
		for _, id := range ids {
			if id == t.value {
				seen = true
				break
			}
		}
		if !seen {
			ids = append(ids, t.value)
		}
	}
	return ids
}

// fromDataset flattens a json-gold dataset into quads, visiting graphs in
// name order so that first-appearance order of blank nodes is stable.
func fromDataset(dataset *ld.RDFDataset) []quad {
	names := make([]string, 0, len(dataset.Graphs))
	for name := range dataset.Graphs {
		names = append(names, name)
	}
	sort.Strings(names)

	var quads []quad
	for _, name := range names {
		graph := graphTerm(name)
		for _, q := range dataset.Graphs[name] {
			if q == nil {
				continue
			}
			quads = append(quads, quad{
				subject:   fromNode(q.Subject),
				predicate: fromNode(q.Predicate),
				object:    fromNode(q.Object),
				graph:     graph,
			})
		}
	}
	return quads
}

func graphTerm(name string) *term {
	if name == defaultGraph || name == "" {
		return nil
	}
	if strings.HasPrefix(name, blankNodeMark) {
		return &term{kind: blankTerm, value: strings.TrimPrefix(name, blankNodeMark)}
	}
	return &term{kind: iriTerm, value: name}
}

// fromNode converts a json-gold term. The dataset built by ToRDF holds value
// types; pointers are accepted as well since ld.Node is satisfied by both.
func fromNode(n ld.Node) term {
	switch v := n.(type) {
	case ld.BlankNode:
		return blankNode(v.Attribute)
	case *ld.BlankNode:
		return blankNode(v.Attribute)
	case ld.Literal:
		return term{kind: literalTerm, value: v.Value, datatype: v.Datatype, language: v.Language}
	case *ld.Literal:
		return term{kind: literalTerm, value: v.Value, datatype: v.Datatype, language: v.Language}
	case ld.IRI:
		return term{kind: iriTerm, value: v.Value}
	case *ld.IRI:
		return term{kind: iriTerm, value: v.Value}
	default:
		return term{kind: iriTerm, value: n.GetValue()}
	}
}

func blankNode(attribute string) term {
	return term{kind: blankTerm, value: strings.TrimPrefix(attribute, blankNodeMark)}
}

// serializeQuad renders q as one N-Quads line. label maps blank node
// identifiers to the label written out.
func serializeQuad(q *quad, label func(string) string) string {
	var b strings.Builder
	writeTerm(&b, q.subject, label)
	b.WriteByte(' ')
	writeTerm(&b, q.predicate, label)
	b.WriteByte(' ')
	writeTerm(&b, q.object, label)
	if q.graph != nil {
		b.WriteByte(' ')
		writeTerm(&b, *q.graph, label)
	}
	b.WriteString(" .\n")
	return b.String()
}

func writeTerm(b *strings.Builder, t term, label func(string) string) {
	switch t.kind {
	case iriTerm:
		b.WriteByte('<')
		b.WriteString(t.value)
		b.WriteByte('>')
	case blankTerm:
		b.WriteString(blankNodeMark)
		b.WriteString(label(t.value))
	case literalTerm:
		b.WriteByte('"')
		b.WriteString(escapeLiteral(t.value))
		b.WriteByte('"')
		if t.language != "" {
			b.WriteByte('@')
			b.WriteString(t.language)
		} else if t.datatype != "" && t.datatype != xsdString {
			b.WriteString("^^<")
			b.WriteString(t.datatype)
			b.WriteByte('>')
		}
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}
