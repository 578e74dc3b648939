/*
Package observability provides the Prometheus collectors of the flow editor.

Collectors live in their own registry so several editors (and tests) can coexist in
one process. Every method is safe on a nil *Metrics, which disables collection.
*/
package observability
