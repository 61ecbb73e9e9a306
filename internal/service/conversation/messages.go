package conversation

import (
	"fmt"
	"strings"

	"github.com/arunalab/aruna/backend/internal/knowledge"
	model "github.com/arunalab/aruna/backend/internal/model/conversation"
)

// Fixed, pre-approved response texts. Safety-critical texts (escalation,
// redirect, decline) are never generated; they are served verbatim.
var fixedMessages = map[string]map[string]string{
	"en": {
		"greeting": `Hello! 👋

I'm Aruna, a virtual friend ready to listen to your story.

What are you feeling today? Just share, I'm here to listen. 💙`,
		"clarifying": "Hmm, I'd like to understand more. Can you tell me more about what you're feeling?",
		"escalation": `I hear that you're going through a really tough time, and your feelings are valid.

I want you to know that you're not alone. I strongly suggest talking to a trusted adult - it could be a school counselor, parent, or teacher.

Is there an adult near you that you can talk to now?`,
		"clinical_redirect": `I understand you want to understand more about what you're feeling.

As a chatbot, I can't provide diagnoses or medical advice. But I can accompany you in reflecting on your feelings.

Would you like to continue sharing about how you're feeling?`,
		"inappropriate_decline": `Sorry, I can't help with that topic.

I'm here to listen and accompany you in reflecting on your feelings.

Is there something else about your feelings today that you'd like to share?`,
		"to_reflection": "Thank you for sharing your story. Let's reflect on it together with a few short questions.",
		"to_narrative":  "Thank you for answering every question. Here is what I heard in your reflection:",
		"to_tips":       "Before we close, here are a few things you could try.",
		"tips_header":   "🌟 Tips for you:",
		"no_tips":       "Keep taking care of your wellbeing in the ways you already do!",
		"closing_ack":   "Thank you! If you want to talk again, you can start a new session any time. 💙",
		"done":          "This session is already complete. If you want to talk again, please start a new session. 💙",
		"system_error":  "Sorry, something went wrong on my side. Please try again in a moment.",
	},
	"id": {
		"greeting": `Halo! 👋

Aku Aruna, teman virtual yang siap mendengarkan ceritamu.

Apa yang sedang kamu rasakan hari ini? Ceritakan saja, aku di sini untuk mendengarkan. 💙`,
		"clarifying": "Hmm, aku ingin memahami lebih dalam. Bisa ceritakan lebih lanjut tentang apa yang kamu rasakan?",
		"escalation": `Aku mendengar bahwa kamu sedang melewati waktu yang sangat berat, dan perasaanmu itu valid.

Aku ingin kamu tahu bahwa kamu tidak sendirian. Aku sangat menyarankan untuk berbicara dengan orang dewasa yang kamu percaya - bisa guru BK, orang tua, atau konselor sekolah.

Apakah ada orang dewasa di sekitarmu yang bisa kamu ajak bicara sekarang?`,
		"clinical_redirect": `Aku mengerti kamu ingin memahami lebih dalam tentang apa yang kamu rasakan.

Sebagai chatbot, aku tidak bisa memberikan diagnosa atau saran medis. Tapi aku bisa menemanimu merefleksikan perasaanmu.

Mau lanjut cerita tentang apa yang kamu rasakan?`,
		"inappropriate_decline": `Maaf, aku tidak bisa membantu dengan topik itu.

Aku di sini untuk mendengarkan dan menemani kamu merefleksikan perasaanmu.

Ada hal lain yang ingin kamu ceritakan tentang perasaanmu hari ini?`,
		"to_reflection": "Terima kasih sudah berbagi ceritamu. Mari kita refleksikan bersama lewat beberapa pertanyaan singkat.",
		"to_narrative":  "Terima kasih sudah menjawab semua pertanyaan. Ini yang aku dengar dari refleksimu:",
		"to_tips":       "Sebelum kita tutup, berikut beberapa hal yang bisa kamu coba.",
		"tips_header":   "🌟 Tips untukmu:",
		"no_tips":       "Teruslah menjaga kesejahteraanmu dengan cara yang sudah kamu lakukan!",
		"closing_ack":   "Terima kasih! Jika kamu mau bicara lagi, kamu bisa memulai sesi baru kapan saja. 💙",
		"done":          "Sesi ini sudah selesai. Jika kamu mau bicara lagi, silakan mulai sesi baru. 💙",
		"system_error":  "Maaf, terjadi kesalahan di sistemku. Coba lagi sebentar ya.",
	},
}

// zoneClosings are the zone-specific closing texts.
var zoneClosings = map[model.WellnessZone]map[string]string{
	model.ZoneStable: {
		"en": "Thank you for sharing today! 🌟\n\nYou're in a good place. Keep taking care of your wellbeing!\n\nSee you again! 💙",
		"id": "Terima kasih sudah berbagi hari ini! 🌟\n\nKamu sudah dalam kondisi yang baik. Terus jaga kesejahteraanmu ya!\n\nSampai jumpa lagi! 💙",
	},
	model.ZoneAdapting: {
		"en": "Thank you for taking the time to talk. 🌱\n\nRemember, facing challenges is a normal part of life. You're doing your best!\n\nIf you ever feel the need to talk again, I'm always here. 💙",
		"id": "Terima kasih sudah meluangkan waktu untuk berbicara. 🌱\n\nIngat, menghadapi tantangan adalah bagian normal dari kehidupan. Kamu sudah melakukan yang terbaik!\n\nJika kapan-kapan merasa perlu bicara lagi, aku selalu di sini. 💙",
	},
	model.ZoneNeedsSupport: {
		"en": "Thank you for sharing and trusting me with your story. 💙\n\nI hope the reflection and tips we discussed can help a little.\n\nRemember, you're not alone. Don't hesitate to talk to a counselor or trusted adult.\n\nI'm always here if you want to talk again. 🤗",
		"id": "Terima kasih sudah berbagi dan percaya untuk bercerita. 💙\n\nAku harap refleksi dan tips yang kita bahas bisa membantu sedikit.\n\nIngat, kamu tidak sendirian. Jangan ragu untuk bicara dengan guru BK atau orang dewasa yang kamu percaya ya.\n\nAku selalu di sini jika kamu mau bicara lagi. 🤗",
	},
	model.ZoneNeedsAttention: {
		"en": "Thank you for sharing. 💙\n\nWhat you're feeling matters, and I want you to get the right support.\n\nPlease talk to a counselor or trusted adult. They can help more than I can.\n\nYou are valuable, and you deserve help. 🤝",
		"id": "Terima kasih sudah berbagi. 💙\n\nYang kamu rasakan itu penting, dan aku ingin kamu mendapat dukungan yang tepat.\n\nTolong bicara dengan guru BK atau orang dewasa yang kamu percaya ya. Mereka bisa membantu lebih dari yang aku bisa.\n\nKamu berharga, dan kamu pantas mendapat bantuan. 🤝",
	},
}

func fixedMessage(lang, key string) string {
	msgs, ok := fixedMessages[lang]
	if !ok {
		msgs = fixedMessages["en"]
	}
	return msgs[key]
}

func closingMessage(zone model.WellnessZone, lang string) string {
	texts, ok := zoneClosings[zone]
	if !ok {
		texts = zoneClosings[model.ZoneAdapting]
	}
	if text, ok := texts[lang]; ok {
		return text
	}
	return texts["en"]
}

// questionMessage renders one reflection question with its 1-based position
// and, for multiple choice, a numbered option list.
func questionMessage(q model.Question, number int, lang string) string {
	var b strings.Builder
	if lang == "id" {
		fmt.Fprintf(&b, "📝 Pertanyaan %d dari %d\n\n", number, model.ReflectionTarget)
	} else {
		fmt.Fprintf(&b, "📝 Question %d of %d\n\n", number, model.ReflectionTarget)
	}
	b.WriteString(q.Text)

	if q.Kind == model.QuestionMC && len(q.Options) > 0 {
		b.WriteString("\n")
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "\n%d. %s", i+1, opt)
		}
	}
	return b.String()
}

// tipsMessage renders the selected tips as a numbered list.
func tipsMessage(tips []knowledge.Tip, lang string) string {
	if len(tips) == 0 {
		return fixedMessage(lang, "no_tips")
	}

	var b strings.Builder
	b.WriteString(fixedMessage(lang, "tips_header"))
	b.WriteString("\n")
	for i, tip := range tips {
		fmt.Fprintf(&b, "\n%d. %s", i+1, tip.Name.In(lang))
		if desc := tip.Description.In(lang); desc != "" {
			fmt.Fprintf(&b, "\n   %s", desc)
		}
		if tip.Duration != "" {
			if lang == "id" {
				fmt.Fprintf(&b, "\n   ⏱️ Durasi: %s", tip.Duration)
			} else {
				fmt.Fprintf(&b, "\n   ⏱️ Duration: %s", tip.Duration)
			}
		}
	}
	return b.String()
}
