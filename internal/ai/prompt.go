package ai

import "fmt"

const classifySystemPrompt = "You are an assistant that classifies Gmail emails. " +
	"Return ONLY valid JSON. " +
	"JSON schema: {" +
	"\"category\": \"SCHEDULE|TASK|SPAM\", " +
	"\"title\": string, " +
	"\"description\": string, " +
	"\"location\": string, " +
	"\"startTime\": RFC3339 string or '미정', " +
	"\"endTime\": RFC3339 string or '미정', " +
	"\"needs_review\": boolean" +
	"}."

const classifyPrompt = `너의 역할은 주어진 이메일이 3가지 카테고리(SCHEDULE, TASK, SPAM) 중 어디에 속하는지 판단하고, 카테고리에 맞는 주요 내용을 추출하여 정리하는 것이다.

답변은 반드시 JSON 형식을 따라야 하며 절대, 어떠한 경우에도 JSON 객체 외의 텍스트(설명, 인사등)를 포함해서는 안된다. 또한 JSON 객체 자체를 최상위로 반환해야 한다.

<categories>
1. SCHEDULE 카테고리 (일정 등록 필요) 이메일이 일정 관련 내용이라면, 다음 필드를 포함하는 JSON을 반환해라:
- category: "SCHEDULE"
- sender: 발신인 (불명확하다면 unknown)
- title: FW:, RE: 등을 유지한 10단어 이내 핵심 요약
- startTime: "YYYY-MM-DDTHH:MM:SS+09:00" 형식 (시간이 모호하면 "미정"으로 작성)
- endTime: 종료 시간 (모르면 시작 시간의 1시간 뒤로 설정)
- description: 요약 내용
- location: 장소 (모르면 unknown)
- needs_review: true/false (시간이 모호하거나 사용자의 확정이 필요한 경우 반드시 true)

2. TASK 카테고리 (작업/확인 필요):
- category: "TASK"
- sender: 발신인
- title: 핵심 요약
- description: 작업 내용 요약
- needs_review: true/false (확인이 필요한 업무인 경우 true)

3. SPAM 카테고리 (무시 가능):
- category: "SPAM"
- description: 스팸 판단 이유
</categories>

[중요 규칙]
<rules>
- (핵심) 본문에 날짜는 있으나 시간이 '점심', '저녁', '오후쯤', '언제 한번' 처럼 모호한 경우:
  * category를 "SCHEDULE"로 분류한다.
  * startTime을 "미정"으로 작성한다.
  * needs_review를 true로 설정하여 사용자가 직접 검토하게 한다.
- 시간 형식(ISO 8601)을 정확히 지켜야 한다 (단, "미정"인 경우 제외).
- 반드시 JSON 형식만 반환하며, <categories>에 정의된 필드 외에는 추가하지 마라.
</rules>

---
### 학습 예시 (Few-Shot Examples)
<examples>
[예시 1: 날짜는 있으나 시간이 모호한 경우 (SCHEDULE + needs_review)]
입력 (Email Context):
발신인: friend@naver.com
제목: 내일 점심 어때?
텍스트: 내일 점심 같이 먹을까? 시간 알려줘.
출력 (JSON):
{
  "category": "SCHEDULE",
  "sender": "friend@naver.com",
  "title": "내일 점심 식사 제안",
  "startTime": "미정",
  "endTime": "미정",
  "description": "상대방이 내일 점심 식사를 제안함. 구체적인 시각 확정 필요.",
  "location": "unknown",
  "needs_review": true
}

[예시 2: 명확하지 않은 업무 요청 (TASK)]
입력 (Email Context):
발신인: prof@university.ac.kr
제목: 과제 제출 확인 부탁
텍스트: 지난번 제출한 과제 파일이 안 열리네. 다시 확인해서 보내주게.
출력 (JSON):
{
  "category": "TASK",
  "sender": "prof@university.ac.kr",
  "title": "과제 파일 재제출 요청",
  "description": "교수님이 깨진 과제 파일에 대해 재전송을 요청함.",
  "needs_review": true
}
</examples>

### 실제 작업 (The Real Task)
<task>
<email_context>
%s
</email_context>

<json_output> `

const maxBodyContext = 5000

func BuildEmailContext(sender, subject, body string) string {
	if runes := []rune(body); len(runes) > maxBodyContext {
		body = string(runes[:maxBodyContext]) + "\n... (truncated)"
	}
	return fmt.Sprintf("[FROM]\n%s\n\n[SUBJECT]\n%s\n\n[BODY]\n%s\n", sender, subject, body)
}

func classifyUserPrompt(emailContext string) string {
	return fmt.Sprintf(classifyPrompt, emailContext)
}
