/*
Package stream turns a completed dialogue turn into server-sent events.

Events is a pure, pull-based sequence derived from a Frame, so the protocol
order can be tested without HTTP. Writer is the thin wire serializer, and
Serve glues a turn to a Writer while guaranteeing a terminal event.

Event order:

	session, step|intent, slots|profile, [validation_error], [sources],
	message|answer (one per word), [tokens], done
*/
package stream
