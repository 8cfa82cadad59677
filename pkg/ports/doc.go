/*
Package ports defines the driven ports (interfaces) of the Benepick dialogue engine.

These interfaces decouple the dialogue tracks from external implementations,
allowing them to work with various session backends, relational stores,
token issuers and answer generators.

# Key Interfaces

  - SessionStore: persists and loads conversation sessions (Memory, Redis).
  - UserStore: creates accounts and stores onboarding profiles (SQLite).
  - TokenIssuer: issues, verifies, rotates and revokes bearer tokens.
  - PolicySearcher: finds welfare policies for a composite query.
  - AnswerGenerator: turns search results into a natural-language answer.
*/
package ports
