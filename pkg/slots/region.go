package slots

import "strings"

// Regions lists the 17 metropolitan and provincial regions in matching order.
var Regions = []string{
	"서울", "부산", "대구", "인천", "광주", "대전", "울산", "세종",
	"경기", "강원", "충북", "충남", "전북", "전남", "경북", "경남", "제주",
}

// Region returns the first region of Regions that appears in msg.
func Region(msg string) (string, bool) {
	lower := strings.ToLower(msg)
	for _, r := range Regions {
		if strings.Contains(lower, strings.ToLower(r)) {
			return r, true
		}
	}
	return "", false
}

// RegionQuickReplies returns the major regions offered as quick replies.
func RegionQuickReplies() []string {
	out := make([]string, 8)
	copy(out, Regions[:8])
	return out
}
