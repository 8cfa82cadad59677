/*
Package observability provides Prometheus metrics and structured audit logging
for the dialogue tracks.

Metrics are fed through domain.TurnHooks so the dialogue layer stays free of
metric plumbing, and through a stream event hook for server-sent events.
*/
package observability
