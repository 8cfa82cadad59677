// Package intent classifies chat messages by keyword membership.
package intent

import (
	"strings"

	"github.com/benepick/benepick/pkg/domain"
)

type rule struct {
	intent   domain.Intent
	keywords []string
}

// rules are checked in priority order.
var rules = []rule{
	{domain.IntentWelfareSearch, []string{"정책", "지원", "혜택", "복지"}},
	{domain.IntentPolicyDetail, []string{"상세", "자세히", "신청방법"}},
	{domain.IntentChitchat, []string{"안녕", "반가", "고마워"}},
}

// Classify returns the intent of msg. Messages matching no rule are treated
// as welfare searches.
func Classify(msg string) domain.Intent {
	lower := strings.ToLower(msg)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return domain.IntentWelfareSearch
}
