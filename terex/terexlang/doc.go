/*
Package terexlang provides the front end of the TeREx language: a scanner built
with lexmachine, a reader producing s-expression trees, the keyword table and a
completeness check for interactive input.

TeREx source is a sequence of s-expressions:

    ; comments run to the end of the line
    (def greeting "hello")
    (defn twice (x) (* 2 x))
    (print greeting (twice 21))

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package terexlang

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'xterex.engine'
func tracer() tracing.Trace {
	return tracing.Select("xterex.engine")
}
