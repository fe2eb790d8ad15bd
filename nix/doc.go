// Package nix locates and rewrites single values inside Nix expression files
// without evaluating them.
//
// A source text is split into tokens by [Tokenize], parsed into a
// [Document] by [Parse], and queried with dotted attribute paths:
//
//	doc, err := nix.Parse(ctx, src)
//	if err != nil {
//		return err
//	}
//
//	enabled, err := doc.Get("networking.firewall.enable") // "true"
//	updated, err := doc.Set("networking.firewall.enable", "false")
//
// # Structure
//
// Only as much structure is recovered as path resolution needs. A document
// is an optional chain of function headers, let ... in and with ...;
// prefixes followed by a body attribute set. Inside attribute sets every
// key = value; binding is recorded with its dotted key and exact spans.
// Values that are attribute sets or lists are parsed recursively; every
// other value is an [Opaque] span.
//
// # Resolution
//
// Keys are matched textually, as written. With the bindings
//
//	networking.firewall.enable = true;
//	networking.firewall.allowedTCPPorts = [ 80 ];
//
// the path networking.firewall.enable resolves, but networking.firewall
// does not: the two bindings are never merged into one set. A binding whose
// key is a prefix of the path is descended into when its value is an
// attribute set. The first binding in source order that matches wins.
//
// # Rewriting
//
// [Document.Set] and [Replace] substitute the bytes of one span and copy
// everything else verbatim, so comments and formatting survive.
package nix
