// Package corpus reads the three on-disk conformance fixture families.
//
// Three unrelated micro-grammars live side by side in the html5lib-tests
// checkout:
//
//   - Tokenizer fixtures (*.test): one JSON document per file with the
//     cases under "tests" (or "xmlViolationTests"). Cases carry input,
//     expected token output, optional initial tokenizer states, an
//     optional lastStartTag, and an optional doubleEscaped flag that adds
//     one extra layer of backslash escaping to every string field.
//
//   - Tree-construction fixtures (*.dat): flat text split into blocks at
//     lines reading exactly "#data". Each block holds the input, an error
//     section (plus optional #new-errors), an optional #document-fragment
//     context, an optional #script-on/#script-off flag, and the expected
//     tree dump after #document. Document and fragment cases are numbered
//     independently from zero in file order.
//
//   - Encoding fixtures (*.dat): #data blocks with an #encoding directive
//     naming the expected sniffed label. Labels compare under WHATWG alias
//     normalization (utf8 is utf-8; the Latin-1 family is windows-1252).
//
// Readers produce the full ordered case sequence for a fixture regardless
// of any allowlist. A block missing a required directive fails the whole
// fixture: skipping it would silently renumber every later case.
package corpus
