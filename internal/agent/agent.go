package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mailendar/mailendar/internal/ai"
	"github.com/mailendar/mailendar/internal/google"
)

const dailyBriefPrompt = `# 페르소나 (Persona)
너는 나의 일정과 작업을 관리하는 '수석 AI 비서'다. 너의 임무는 내가 검토하기 쉽도록, 이미 정제된 데이터를 바탕으로 C-level 수준의 '데일리 브리핑'을 Markdown 형식으로 생성하는 것이다.

# 작업 지시 (Instructions)
1.  데이터 확인: 입력받은 clean_events와 clean_tasks는 이미 100%% 정제된 데이터다. 너는 이 데이터를 '그대로' 가져와서 [OUTPUT FORMAT]에 맞게 배치해야 한다.
2.  인사이트 생성: clean_events와 clean_tasks의 내용을 종합적으로 교차 분석하여, 내가 놓칠 수 있는 연관성, 우선순위, 또는 준비 사항을 "수석 비서 코멘트" 섹션에 작성한다. 이것이 너의 가장 중요한 임무다.
3.  형식 준수: '### 오늘의 일정', '### 할 일', '### 수석 비서 코멘트' 세 개의 헤더와 글머리 기호를 정확히 지켜야 한다.
4.  빈 데이터 처리: clean_events나 clean_tasks가 빈 배열([])일 경우, "오늘은 등록된 일정이 없습니다." 같은 적절한 메시지를 출력한다.

[clean_events]
%s

[clean_tasks]
%s

[Output]`

type Agent struct {
	client ai.Chatter
}

func New(client ai.Chatter) *Agent {
	return &Agent{client: client}
}

func (a *Agent) DailyBrief(ctx context.Context, events []google.Event, tasks []google.Task) (string, error) {
	if events == nil {
		events = []google.Event{}
	}
	if tasks == nil {
		tasks = []google.Task{}
	}

	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("failed to marshal events: %w", err)
	}
	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tasks: %w", err)
	}

	system := "You are a helpful Korean 업무 비서. Markdown으로 보기 좋게 정리해라."
	user := fmt.Sprintf(dailyBriefPrompt, eventsJSON, tasksJSON)

	return a.client.Chat(ctx, system, user)
}

func (a *Agent) ReplyDraft(ctx context.Context, emailContext, hint string) (string, error) {
	var b strings.Builder
	b.WriteString("너는 업무 이메일 답장을 돕는 AI 비서다.\n")
	b.WriteString("아래 이메일에 대해 정중하고 간결한 한국어 답장 초안을 작성해라.\n")
	b.WriteString("중요: 이 앱은 이메일을 실제로 발송하지 않는다. 따라서 '발송 완료', '발송했습니다' 같은 표현을 절대 쓰지 마라.\n")
	b.WriteString("또한 사용자가 별도로 요청하지 않는 이상 '발송 완료' 같은 자동 문구/주석을 넣지 마라.\n")
	b.WriteString("상대가 요구한 행동(회신/자료/일 수락 여부 등)이 있다면 그것을 명확히 반영해라.\n")
	b.WriteString("불필요한 장황함은 피하고, 필요한 질문이 있으면 짧게 물어봐라.\n")
	b.WriteString("출력은 '답장 본문'만 제공해라.\n")

	hint = strings.TrimSpace(hint)
	if hint != "" {
		fmt.Fprintf(&b, "\n[추가 요청]\n%s\n", hint)
	}
	fmt.Fprintf(&b, "\n[이메일]\n%s\n", emailContext)

	return a.client.Chat(ctx, "You are a helpful assistant.", b.String())
}

func (a *Agent) RefineReply(ctx context.Context, emailContext, currentDraft, instruction string) (string, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return currentDraft, nil
	}

	user := fmt.Sprintf("너는 업무 이메일 답장을 다듬는 AI 비서다.\n"+
		"아래 '현재 초안'을 '사용자 요청'에 맞게 수정해라.\n"+
		"중요: 이 앱은 이메일을 실제로 발송하지 않는다. 따라서 '발송 완료', '발송했습니다' 같은 표현을 절대 쓰지 마라.\n"+
		"가능하면 전체를 다시 작성하되, 핵심 정보(일정/요청/확답)는 유지해라.\n"+
		"출력은 '수정된 답장 본문'만 제공해라.\n\n"+
		"[이메일]\n%s\n\n[현재 초안]\n%s\n\n[사용자 요청]\n%s\n",
		emailContext, currentDraft, instruction)

	return a.client.Chat(ctx, "You are a helpful assistant.", user)
}
