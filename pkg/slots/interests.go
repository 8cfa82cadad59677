package slots

import (
	"regexp"
	"strconv"
	"strings"
)

// Interest is one entry of the interest vocabulary.
type Interest struct {
	Key   string
	Label string
	Emoji string
}

// Interests lists the selectable interests. Numeric answers are 1-based indices into it.
var Interests = []Interest{
	{Key: "housing", Label: "주거/임대", Emoji: "🏠"},
	{Key: "job", Label: "취업/창업", Emoji: "💼"},
	{Key: "education", Label: "교육/장학", Emoji: "📚"},
	{Key: "health", Label: "의료/건강", Emoji: "🏥"},
	{Key: "childcare", Label: "육아/보육", Emoji: "👶"},
	{Key: "finance", Label: "금융/대출", Emoji: "💰"},
}

var digits = regexp.MustCompile(`\d+`)

// ExtractInterests returns the labels selected in msg: label or key matches
// first in table order, then numeric choices, without duplicates.
func ExtractInterests(msg string) []string {
	lower := strings.ToLower(msg)
	var out []string
	seen := make(map[string]bool)
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}

	for _, in := range Interests {
		if strings.Contains(lower, in.Label) || strings.Contains(lower, in.Key) {
			add(in.Label)
		}
	}

	for _, tok := range digits.FindAllString(msg, -1) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if n >= 1 && n <= len(Interests) {
			add(Interests[n-1].Label)
		}
	}
	return out
}

// InterestQuickReplies renders the interests as "emoji label" suggestions.
func InterestQuickReplies() []string {
	out := make([]string, len(Interests))
	for i, in := range Interests {
		out[i] = in.Emoji + " " + in.Label
	}
	return out
}
