/*
Package ports defines the collaborator interfaces the turtleshot core depends on.

The harness and finalizer never talk to a concrete interpreter, canvas or
storage backend. They consume these ports, which keeps the core testable with
small fakes and lets the CLI and HTTP surfaces pick the implementations.

# Key Interfaces

  - Interpreter: runs program source and reports cycle and stack counters.
  - Turtle: the drawing surface; exposes the pen state, move notifications and a raster snapshot.
  - Transcript: the text sink a program prints to.
  - RunLedger: persists RunRecords so batch runs can be grouped by tag.
*/
package ports
