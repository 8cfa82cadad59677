package slots

import "strings"

// LifeCycleEntry maps a life-cycle label to the keywords that select it.
type LifeCycleEntry struct {
	Key      string
	Label    string
	Keywords []string
}

// LifeCycleTable is an ordered life-cycle vocabulary. Order decides ties.
type LifeCycleTable []LifeCycleEntry

// Labels returns the labels in table order.
func (t LifeCycleTable) Labels() []string {
	out := make([]string, len(t))
	for i, e := range t {
		out[i] = e.Label
	}
	return out
}

// OnboardingLifeCycles is the vocabulary of the onboarding track.
var OnboardingLifeCycles = LifeCycleTable{
	{Key: "pregnancy", Label: "임신/출산", Keywords: []string{"임신", "출산", "임산부", "산모"}},
	{Key: "infant", Label: "영유아 양육", Keywords: []string{"영유아", "아기", "육아", "어린이집"}},
	{Key: "child", Label: "아동/청소년", Keywords: []string{"아동", "청소년", "초등", "중고등"}},
	{Key: "youth", Label: "청년", Keywords: []string{"청년", "20대", "30대", "취준"}},
	{Key: "middle", Label: "중장년", Keywords: []string{"중장년", "40대", "50대"}},
	{Key: "senior", Label: "노년", Keywords: []string{"노인", "어르신", "60대", "70대", "실버"}},
}

// ChatLifeCycles is the coarser vocabulary of the chat track.
var ChatLifeCycles = LifeCycleTable{
	{Key: "pregnancy", Label: "임신/출산", Keywords: []string{"임신", "출산"}},
	{Key: "childcare", Label: "육아", Keywords: []string{"육아", "아이"}},
	{Key: "youth", Label: "청년", Keywords: []string{"청년"}},
	{Key: "job", Label: "취업/창업", Keywords: []string{"취업", "창업"}},
	{Key: "senior", Label: "노년", Keywords: []string{"노인", "어르신"}},
	{Key: "disability", Label: "장애인", Keywords: []string{"장애"}},
}

// LifeCycle returns the label of the first entry whose keyword, or label
// itself, appears in msg.
func LifeCycle(table LifeCycleTable, msg string) (string, bool) {
	lower := strings.ToLower(msg)
	for _, e := range table {
		for _, kw := range e.Keywords {
			if strings.Contains(lower, kw) {
				return e.Label, true
			}
		}
		if strings.Contains(lower, e.Label) {
			return e.Label, true
		}
	}
	return "", false
}
