/*
Package session implements session lifecycle management on top of a ports.SessionStore.

The Manager mints track-prefixed session IDs, resumes or creates sessions for
incoming messages, and handles delayed deletion of completed sessions through
an expiry timestamp: expired sessions are treated as absent on access and are
removed by a periodic sweep.

Concurrent turns on the same session ID are not serialized; the last save wins.
*/
package session
