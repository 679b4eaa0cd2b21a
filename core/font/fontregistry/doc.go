/*
Package fontregistry manages a registry for loaded fonts.

A Registry plays the role of a font library: clients initialize it with Init
before opening any font and tear it down with Teardown when done. Init and
Teardown are reference counted, and every typecase opened through the
registry holds a reference of its own until it is closed. Parsed font files
are cached and shared between typecases; the cache is dropped when the last
reference is released.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'glyphset.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphset.fonts")
}
