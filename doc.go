/*
Package xterex is a kernel for the TeREx scripting language, driven by an
interactive messaging-protocol host.

A host delivers execution requests one at a time. The kernel compiles each unit
of source text, runs it on a long-lived virtual machine and turns everything the
engine prints, warns about or fails with into exactly one structured reply.
Package structure is as follows:

■ terex: Package terex implements the embedded engine: programs, a compiler
bound to a program, and a virtual machine with persistent globals.

■ terex/terexlang: Package terexlang implements the scanner and s-expression reader
for TeREx, together with its keyword table.

■ runtime: Package runtime provides scopes, symbol tables and memory frames for the
compiler and the VM.

■ kernel: Package kernel implements the execution lifecycle: output capture,
warning relay, the engine session, the execution pipeline and reply building.

■ host: Sub-packages of host connect a kernel to a terminal, to a framed byte
stream, or to MCP clients.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package xterex
