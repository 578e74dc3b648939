/*
Package domain contains the core data model of the flow builder.
It defines the entities of the chatbot flow graph, such as Nodes, Edges, Ports,
and the Flow aggregate that is persisted as a single snapshot. This package is kept
pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Node: A typed vertex (Welcome, Intent, Handoff, Condition, Message) with a world-space position.
  - Port: A named attachment point, derived from the node kind and never persisted.
  - Edge: A directed link from an output port to an input port.
  - Flow: The complete graph plus metadata; the unit of persistence.
  - Notice: A transient, user-facing message raised at an operation boundary.
*/
package domain
