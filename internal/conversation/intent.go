package conversation

import "strings"

// greetings are matched against the whole normalized message.
var greetings = map[string]struct{}{
	"привет":       {},
	"здравствуйте": {},
	"салам":        {},
	"hi":           {},
	"hello":        {},
	"добрый день":  {},
	"добрый вечер": {},
}

// bookingKeywords match anywhere in the message and trigger the intake form.
var bookingKeywords = []string{
	"записаться",
	"консультац",
	"созвон",
	"перезвон",
	"запишите меня",
	"appointment",
}

// RouteIntent returns a canned reply for messages that can be answered
// without the LLM. The second return value reports whether a reply matched.
func RouteIntent(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}

	if _, ok := greetings[t]; ok {
		return greetingReply, true
	}
	if _, ok := greetings[strings.TrimSuffix(t, "!")]; ok {
		return greetingReply, true
	}

	for _, kw := range bookingKeywords {
		if strings.Contains(t, kw) {
			return consultationFormReply, true
		}
	}
	return "", false
}
