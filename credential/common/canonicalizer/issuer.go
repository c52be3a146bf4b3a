package canonicalizer

import "strconv"

// identifierIssuer hands out sequential blank node labels and remembers the
// order in which existing identifiers received them.
type identifierIssuer struct {
	prefix  string
	counter int
	issued  map[string]string
	order   []string
}

func newIdentifierIssuer(prefix string) *identifierIssuer {
	return &identifierIssuer{prefix: prefix, issued: make(map[string]string)}
}

func (i *identifierIssuer) issue(existing string) string {
	if id, ok := i.issued[existing]; ok {
		return id
	}
	id := i.prefix + strconv.Itoa(i.counter)
	i.counter++
	i.issued[existing] = id
	i.order = append(i.order, existing)
	return id
}

func (i *identifierIssuer) lookup(existing string) (string, bool) {
	id, ok := i.issued[existing]
	return id, ok
}

func (i *identifierIssuer) clone() *identifierIssuer {
	c := &identifierIssuer{
		prefix:  i.prefix,
		counter: i.counter,
		issued:  make(map[string]string, len(i.issued)),
		order:   make([]string, len(i.order)),
	}
	for k, v := range i.issued {
		c.issued[k] = v
	}
	copy(c.order, i.order)
	return c
}
