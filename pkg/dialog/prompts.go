package dialog

// Registration prompts.
const (
	regGreeting        = "안녕하세요! 베니픽 회원가입을 도와드릴게요. 먼저 이름을 알려주시겠어요?"
	regAskEmail        = "좋아요! 이제 로그인에 사용할 이메일 주소를 알려주세요."
	regAskPassword     = "이메일이 확인됐어요! 이제 비밀번호를 설정해주세요. (8자 이상)"
	regAskConfirm      = "비밀번호를 한 번 더 입력해주세요."
	regConfirmSummary  = "입력하신 정보를 확인해주세요:\n\n• 이름: %s\n• 이메일: %s\n\n이대로 가입을 진행할까요? (네/아니오)"
	regCompleted       = "회원가입이 완료됐어요! 이제 베니픽의 모든 서비스를 이용하실 수 있어요. 🎉"
	regRestart         = "알겠어요. 처음부터 다시 시작할게요. 이름을 알려주세요."
	regConfirmHelp     = "가입을 진행하시려면 '네', 다시 입력하시려면 '아니오'라고 말씀해주세요."
	regAlreadyComplete = "이미 회원가입이 완료되었어요."

	regRetry         = " 다시 입력해주세요."
	regRetryEmail    = " 다시 입력해주세요. (예: example@email.com)"
	regRetryOther    = " 다른 이메일을 입력해주세요."
	regRetryPassword = " 비밀번호를 다시 입력해주세요."
	regRetryCreate   = " 다시 시도해주세요."

	msgEmailTaken      = "이미 가입된 이메일이에요."
	msgEmailRegistered = "이미 등록된 이메일입니다"
	msgPasswordMatch   = "비밀번호가 일치하지 않아요."
)

// Onboarding prompts.
const (
	onbGreeting        = "%s님, 가입을 축하해요! 🎉\n\n더 정확한 맞춤 혜택을 찾아드리기 위해 몇 가지만 여쭤볼게요.\n\n어느 지역에 거주하고 계신가요?"
	onbRegionOK        = "%s에 사시는군요! 👍\n\n현재 상황에 해당하는 것이 있으신가요?"
	onbRegionRetry     = "죄송해요, 지역을 잘 이해하지 못했어요. 거주하시는 시/도를 알려주세요."
	onbLifeCycleOK     = "%s 관련 정책을 중점적으로 찾아드릴게요!\n\n마지막으로, 관심 있는 분야를 선택해주세요. (복수 선택 가능)"
	onbLifeCycleSkip   = "알겠어요! 그럼 관심 있는 분야를 선택해주세요. (복수 선택 가능)"
	onbLifeCycleRetry  = "어떤 상황에 계신지 알려주시면 더 정확한 혜택을 찾아드릴 수 있어요."
	onbCompleted       = "완료됐어요! 입력해주신 정보를 바탕으로 맞춤 혜택을 찾아드릴게요.\n\n%s\n\n이제 베니픽을 시작해볼까요? 🚀"
	onbInterestsSkip   = "알겠어요! 나중에 설정에서 언제든 변경하실 수 있어요.\n\n이제 베니픽을 시작해볼까요? 🚀"
	onbInterestsRetry  = "관심 있는 분야를 선택해주세요. 여러 개 선택하셔도 돼요!"
	onbAlreadyComplete = "온보딩이 이미 완료되었어요!"

	defaultDisplayName = "회원"
	optNotApplicable   = "해당없음"
	optSkip            = "건너뛰기"
)

// Chat prompts.
const (
	chatChitchat     = "안녕하세요! 복지 정책에 대해 궁금한 점이 있으시면 말씀해주세요."
	chatAskRegion    = "어느 지역에 거주하고 계신가요?"
	chatAskLifeCycle = "현재 상황에 해당하는 것이 있으신가요? (임신/출산, 육아, 취업, 청년 등)"
	chatClarify      = "어떤 복지 정책에 대해 알고 싶으신가요?"
	chatEmptyMessage = "메시지를 입력해주세요"
)

// Answer fallbacks used when generation is unavailable or fails.
const (
	answerNoPolicies = "죄송합니다. 검색 조건에 맞는 정책을 찾지 못했습니다. 다른 키워드로 다시 검색해보세요."
	answerFoundList  = "관련 정책을 찾았습니다:\n\n%s\n\n자세한 내용은 각 정책을 확인해주세요."
	answerFoundCount = "관련 정책 %d건을 찾았습니다. 상세 내용은 정책 카드를 확인해주세요."
	answerFailed     = "죄송합니다. 답변 생성 중 오류가 발생했습니다."
	answerEmpty      = "답변을 생성하지 못했습니다."
	maskedSecret     = "********"
)
