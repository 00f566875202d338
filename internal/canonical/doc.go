// Package canonical renders a merged journal set into the canonical XML
// document consumed by the text-generation collaborator.
//
// The document shape is part of the wire contract and must stay stable:
// a single journal serializes flat under a <journal> root, multiple
// journals serialize grouped under <journals> with one named <journal>
// sub-element per source. Entry elements carry created, modified,
// optional loc, optional journal and text children, two-space indented.
//
// Serialization is a pure function of the set's contents: the same set
// always produces byte-identical output. Journals are emitted in sorted
// name order and all text passes through encoding/xml escaping, so no
// field reaches the document unescaped.
package canonical
