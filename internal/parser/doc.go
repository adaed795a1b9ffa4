// Package parser recovers a structural outline from source lines without a
// compiler front end.
//
// Each language family has one Scanner. Scanners make a single forward pass
// over the lines, track nesting with brace or tag counting and classify
// declarations with regular expressions. They are best-effort: malformed
// input yields a partial tree, never an error. A Registry maps normalized
// file-kind keys (".cs", ".vue", ...) to scanner factories.
package parser
