/*
Package slots extracts structured facts from free-text Korean messages.

Every extractor is a total function over its input: it never panics and never
returns an error. A miss is reported as ok=false (or an empty slice) and the
caller leaves the corresponding slot unchanged.
*/
package slots
