/*
Package kernel adapts the TeREx engine to an interactive messaging protocol.
A host hands in one request at a time; the kernel compiles and runs it and turns
printed text, warnings and errors into exactly one structured reply.

The parts, leaves first:

■ OutputSink accumulates text the engine prints. It is drained before every run
and, after a failed run, drained once more to capture the stack trace.

■ Session owns program, compiler and VM of the engine. The three are acquired
together and released together, in dependency order. No handle escapes it.

■ WarningRelay forwards engine warnings to the host as stream notifications,
at the moment the engine raises them.

■ Pipeline is the state machine driving one request through compile and run,
producing an Outcome: Success, CompileFailure or RuntimeFailure.

■ BuildExecuteReply maps an Outcome to the reply shape of the protocol.

■ Complete looks up keywords for a prefix. It does not touch engine state.

Kernel ties these together behind the lifecycle calls Start and Shutdown.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package kernel

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'xterex.kernel'.
func tracer() tracing.Trace {
	return tracing.Select("xterex.kernel")
}
