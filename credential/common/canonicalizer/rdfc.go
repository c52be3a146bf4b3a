package canonicalizer

import (
	"crypto"
	_ "crypto/sha256" // register SHA-256
	_ "crypto/sha512" // register SHA-384
	"encoding/hex"
	"sort"
	"strings"
)

// rdfcState carries one run of the RDFC-1.0 labelling algorithm.
type rdfcState struct {
	hash        crypto.Hash
	blankQuads  map[string][]*quad
	blankOrder  []string
	canonical   *identifierIssuer
	firstDegree map[string]string
}

// canonicalizeDataset labels every blank node with a canonical c14n
// identifier and returns the sorted N-Quads document.
func canonicalizeDataset(quads []quad, h crypto.Hash) string {
	s := &rdfcState{
		hash:        h,
		blankQuads:  make(map[string][]*quad),
		canonical:   newIdentifierIssuer("c14n"),
		firstDegree: make(map[string]string),
	}

	for i := range quads {
		q := &quads[i]
		for _, id := range q.blankNodes() {
			if _, ok := s.blankQuads[id]; !ok {
				s.blankOrder = append(s.blankOrder, id)
			}
			s.blankQuads[id] = append(s.blankQuads[id], q)
		}
	}

	// Nodes with a unique first degree hash are labelled directly.
	hashToBlank := make(map[string][]string)
	for _, id := range s.blankOrder {
		h := s.hashFirstDegree(id)
		hashToBlank[h] = append(hashToBlank[h], id)
	}
	hashes := sortedKeys(hashToBlank)
	for _, h := range hashes {
		if ids := hashToBlank[h]; len(ids) == 1 {
			s.canonical.issue(ids[0])
		}
	}

	// Remaining groups are ordered by their N-degree hash.
	for _, h := range hashes {
		ids := hashToBlank[h]
		if len(ids) < 2 {
			continue
		}

		type pathResult struct {
			hash   string
			issuer *identifierIssuer
		}
		var results []pathResult
		for _, id := range ids {
			if _, ok := s.canonical.lookup(id); ok {
				continue
			}
			temporary := newIdentifierIssuer("b")
			temporary.issue(id)
			hash, issuer := s.hashNDegree(id, temporary)
			results = append(results, pathResult{hash: hash, issuer: issuer})
		}
		sort.SliceStable(results, func(i, j int) bool { return results[i].hash < results[j].hash })
		for _, r := range results {
			for _, existing := range r.issuer.order {
				s.canonical.issue(existing)
			}
		}
	}

	lines := make([]string, 0, len(quads))
	label := func(id string) string {
		c, _ := s.canonical.lookup(id)
		return c
	}
	for i := range quads {
		lines = append(lines, serializeQuad(&quads[i], label))
	}
	sort.Strings(lines)
	lines = dedupeSorted(lines)
	return strings.Join(lines, "")
}

func (s *rdfcState) digest(data string) string {
	h := s.hash.New()
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *rdfcState) hashFirstDegree(id string) string {
	if h, ok := s.firstDegree[id]; ok {
		return h
	}

	label := func(v string) string {
		if v == id {
			return "a"
		}
		return "z"
	}
	quads := s.blankQuads[id]
	lines := make([]string, 0, len(quads))
	for _, q := range quads {
		lines = append(lines, serializeQuad(q, label))
	}
	sort.Strings(lines)

	h := s.digest(strings.Join(lines, ""))
	s.firstDegree[id] = h
	return h
}

func (s *rdfcState) hashRelatedBlankNode(related string, q *quad, issuer *identifierIssuer, position string) string {
	var id string
	if c, ok := s.canonical.lookup(related); ok {
		id = blankNodeMark + c
	} else if c, ok := issuer.lookup(related); ok {
		id = blankNodeMark + c
	} else {
		id = s.hashFirstDegree(related)
	}

	input := position
	if position != "g" {
		input += "<" + q.predicate.value + ">"
	}
	return s.digest(input + id)
}

func (s *rdfcState) hashNDegree(id string, issuer *identifierIssuer) (string, *identifierIssuer) {
	related := make(map[string][]string)
	for _, q := range s.blankQuads[id] {
		for _, c := range []struct {
			t        *term
			position string
		}{{&q.subject, "s"}, {&q.object, "o"}, {q.graph, "g"}} {
			if c.t == nil || c.t.kind != blankTerm || c.t.value == id {
				continue
			}
			h := s.hashRelatedBlankNode(c.t.value, q, issuer, c.position)
			related[h] = append(related[h], c.t.value)
		}
	}

	var data strings.Builder
	for _, relatedHash := range sortedKeys(related) {
		data.WriteString(relatedHash)

		var chosenPath string
		var chosenIssuer *identifierIssuer
		permute(related[relatedHash], func(perm []string) {
			issuerCopy := issuer.clone()
			var path strings.Builder
			var recursion []string

			for _, r := range perm {
				if c, ok := s.canonical.lookup(r); ok {
					path.WriteString(blankNodeMark + c)
				} else {
					if _, ok := issuerCopy.lookup(r); !ok {
						recursion = append(recursion, r)
					}
					path.WriteString(blankNodeMark + issuerCopy.issue(r))
				}
				if worsePath(path.String(), chosenPath) {
					return
				}
			}

			for _, r := range recursion {
				hash, resultIssuer := s.hashNDegree(r, issuerCopy)
				path.WriteString(blankNodeMark + issuerCopy.issue(r))
				path.WriteString("<" + hash + ">")
				issuerCopy = resultIssuer
				if worsePath(path.String(), chosenPath) {
					return
				}
			}

			if chosenIssuer == nil || path.String() < chosenPath {
				chosenPath = path.String()
				chosenIssuer = issuerCopy
			}
		})

		data.WriteString(chosenPath)
		if chosenIssuer != nil {
			issuer = chosenIssuer
		}
	}

	return s.digest(data.String()), issuer
}

// worsePath reports whether path can no longer beat chosen.
func worsePath(path, chosen string) bool {
	return chosen != "" && len(path) >= len(chosen) && path > chosen
}

// permute calls fn with every ordering of items.
func permute(items []string, fn func([]string)) {
	perm := make([]string, len(items))
	copy(perm, items)
	sort.Strings(perm)

	var generate func(k int)
	generate = func(k int) {
		if k == len(perm) {
			out := make([]string, len(perm))
			copy(out, perm)
			fn(out)
			return
		}
		for i := k; i < len(perm); i++ {
			perm[k], perm[i] = perm[i], perm[k]
			generate(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	generate(0)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupeSorted(lines []string) []string {
	if len(lines) < 2 {
		return lines
	}
	out := lines[:1]
	for _, l := range lines[1:] {
		if l != out[len(out)-1] {
			out = append(out, l)
		}
	}
	return out
}
