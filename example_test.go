package benepick_test

import (
	"context"
	"fmt"
	"log"

	"github.com/benepick/benepick"
	"github.com/benepick/benepick/pkg/dialog"
)

// ExampleNew_chat shows the chat track asking for the slots it still needs.
func ExampleNew_chat() {
	engine, err := benepick.New(":memory:")
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	ctx := context.Background()
	res, err := engine.Chat().Converse(ctx, dialog.ChatRequest{Message: "월세 지원 받고 싶어요"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Intent, res.ReadyToSearch)
	fmt.Println(res.Response)

	res, err = engine.Chat().Converse(ctx, dialog.ChatRequest{Message: "부산에 사는 청년이에요", SessionID: res.SessionID})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.UserProfile.Region, res.UserProfile.LifeCycle, res.ReadyToSearch)

	// Output:
	// welfare_search false
	// 어느 지역에 거주하고 계신가요?
	// 부산 청년 true
}
