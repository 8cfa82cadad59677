/*
Package benepick is a conversational slot-filling engine for a welfare benefit
assistant.

A user talks to one of three dialogue tracks, each backed by a session that
survives between messages:

  - Registration collects a name, an email and a confirmed password, then
    creates the account and issues bearer tokens.
  - Onboarding asks an authenticated user for their region, life cycle and
    interests, then stores the profile.
  - Chat classifies each message, fills the region and life cycle slots from
    free text and, once both are known, searches the policy catalog and
    answers with the matching policies.

# Usage

The Engine wires the tracks over a session store, a user store, a token
issuer and a policy searcher. Without injected stores it opens a SQLite
database at the given path.

	engine, err := benepick.New(":memory:")
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	res, err := engine.Chat().Converse(ctx, dialog.ChatRequest{Message: "서울 사는 청년인데 월세 지원 있나요?"})

The same services are exposed over HTTP (pkg/adapters/http), MCP
(pkg/adapters/mcp) and the terminal (Runner).
*/
package benepick
