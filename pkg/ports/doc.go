/*
Package ports defines the driven ports (interfaces) for the flow builder.

These interfaces decouple the editor from external implementations, allowing
it to work with various storage backends, catalog sources, and flow consumers.

# Key Interfaces

  - KVStore: A durable key-value slot holding JSON-encoded snapshots (Memory, File, Redis, SQL).
  - FlowSink: Receives every successfully saved flow so the chat runtime can pick it up.
  - Notifier: Surfaces transient notices (toasts) to the user.
  - DepartmentCatalog / AssistantCatalog: Externally supplied routing targets and AI assistants.
*/
package ports
