package conversation

import (
	"fmt"
	"strings"

	"github.com/arunalab/aruna/backend/internal/knowledge"
	model "github.com/arunalab/aruna/backend/internal/model/conversation"
)

// templateNarrative builds the deterministic reflective narrative used when
// the reasoner is unavailable or the call budget is spent. It weaves in the
// detected emotion label, the zone description, and the user's first answer.
func templateNarrative(sess *model.Session, kb *knowledge.Base) string {
	label := kb.EmotionLabel(sess.PrimaryEmotion, sess.Language)
	zoneDesc := ""
	if info, ok := kb.ZoneInfo(sess.Zone); ok {
		zoneDesc = info.Description.In(sess.Language)
	}

	excerpt := ""
	if len(sess.Answers) > 0 {
		excerpt = answerExcerpt(sess.Answers[0].Answer, 120)
	}

	if sess.Language == "en" {
		var b strings.Builder
		fmt.Fprintf(&b, "From the story you shared, it sounds like you have been carrying a feeling of %s. That is a very human response to what you went through.", strings.ToLower(label))
		if excerpt != "" {
			fmt.Fprintf(&b, " When you said %q, it showed how much this has been on your mind.", excerpt)
		}
		if zoneDesc != "" {
			fmt.Fprintf(&b, " Right now, %s", lowerFirst(zoneDesc))
		}
		b.WriteString(" Taking the time to put this into words is already a meaningful step.")
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dari cerita yang kamu bagikan, sepertinya kamu sedang membawa perasaan %s. Itu respons yang sangat manusiawi atas apa yang kamu alami.", strings.ToLower(label))
	if excerpt != "" {
		fmt.Fprintf(&b, " Saat kamu bilang %q, terlihat betapa hal ini ada di pikiranmu.", excerpt)
	}
	if zoneDesc != "" {
		fmt.Fprintf(&b, " Saat ini, %s", lowerFirst(zoneDesc))
	}
	b.WriteString(" Meluangkan waktu untuk menuangkan ini ke dalam kata-kata sudah merupakan langkah yang berarti.")
	return b.String()
}

func answerExcerpt(answer string, max int) string {
	answer = strings.TrimSpace(answer)
	runes := []rune(answer)
	if len(runes) <= max {
		return answer
	}
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToLower(string(r[0])))[0]
	return string(r)
}
