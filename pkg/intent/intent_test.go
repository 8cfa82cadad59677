package intent_test

import (
	"testing"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/intent"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want domain.Intent
	}{
		{"28살 서울 월세 지원", domain.IntentWelfareSearch},
		{"청년 혜택 알려줘", domain.IntentWelfareSearch},
		{"자세히 알려주세요", domain.IntentPolicyDetail},
		{"신청방법이 뭐예요", domain.IntentPolicyDetail},
		{"안녕하세요", domain.IntentChitchat},
		{"고마워!", domain.IntentChitchat},
		// Priority: welfare terms beat greeting terms.
		{"안녕하세요 복지 정책 궁금해요", domain.IntentWelfareSearch},
		// Priority: detail terms beat greeting terms.
		{"반가워요 상세 내용 알려줘", domain.IntentPolicyDetail},
		{"서울", domain.IntentWelfareSearch},
		{"", domain.IntentWelfareSearch},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, intent.Classify(tt.msg))
		})
	}
}
