/*
Package resources resolves fonts installed on the system.

The central type is Database, an in-memory font database which matches
font queries (family, style, weight) to font files, the way fontconfig's
FcFontMatch does. A database is populated from one of two sources:

▪︎ the output of fontconfig's 'fc-list' binary, if configured with key
'fontconfig' (absolute path of fc-list). The listing is cached in the
user's cache directory, in a sub-folder named by configuration key 'app-key'.

▪︎ a scan of the platform's font directories, reading family and
sub-family names from the font files.

As scanning for fonts may be a time-consuming task, databases are created
in an async/await fashion by returning a promise. Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'glyphset.resources'.
func tracer() tracing.Trace {
	return tracing.Select("glyphset.resources")
}
