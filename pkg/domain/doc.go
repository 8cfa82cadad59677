/*
Package domain contains the core domain models of the Benepick dialogue engine.

It defines the conversational session, the slots collected on each track, the
policy and user records exchanged with external collaborators, and the
sentinel errors shared by every layer. The package is kept pure and free of
I/O so that the dialogue state machines and the adapters can depend on it
without depending on each other.

# Key Entities

  - Session: the in-flight conversation of one track (Registration, Onboarding, Chat).
  - RegistrationSlots / Profile: the partially collected fields of a session.
  - PolicySource: a search hit returned by the policy searcher.
  - TurnHooks: observability callbacks fired by the dialogue services.
*/
package domain
