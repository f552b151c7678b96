package responder

import (
	"regexp"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

func navigate(label, target string) domain.Action {
	return domain.Action{Label: label, Type: domain.ActionNavigate, Target: target}
}

// emotionContent is the canned material attached to an emotion reply.
type emotionContent struct {
	messages    []string
	prayers     []domain.Action
	suggestions []string
}

var emotionTable = map[domain.Emotion]emotionContent{
	domain.EmotionHappy: {
		messages: []string{
			"Alhamdulillah! It's wonderful to hear you're feeling happy. Moments of joy are a blessing worth giving thanks for.",
			"That's beautiful to hear. May Allah keep filling your days with happiness and barakah.",
			"Your happiness is a gift. Why not share some of that joy through a prayer of gratitude?",
		},
		prayers: []domain.Action{
			navigate("Dua of Gratitude", "/duas/gratitude"),
			navigate("Salawat", "/duas/salawat"),
		},
		suggestions: []string{"Recite a dua of thanks", "Share your joy with family", "Give a small sadaqah"},
	},
	domain.EmotionSad: {
		messages: []string{
			"I'm sorry you're feeling this way. Remember that with hardship comes ease, and you are never alone.",
			"It's okay to feel sad. Allah is close to the brokenhearted. Would a comforting dua help right now?",
			"Sadness is heavy to carry. Take a moment, breathe, and know that this too shall pass, insha'Allah.",
		},
		prayers: []domain.Action{
			navigate("Dua for Relief from Sorrow", "/duas/relief"),
			navigate("Dua Kumayl", "/duas/kumayl"),
			navigate("Ziyarat of Imam Hussain", "/ziyarat/imam-hussain"),
		},
		suggestions: []string{"Listen to a comforting recitation", "Talk to someone you trust", "Read Surah Ad-Duha"},
	},
	domain.EmotionAnxious: {
		messages: []string{
			"I can sense you're feeling anxious. Verily, in the remembrance of Allah do hearts find rest.",
			"Anxiety can feel overwhelming. Let's slow down together. A short dua for peace may help settle your heart.",
			"You're not alone in this. Take a deep breath and place your trust in Allah; He does not burden a soul beyond what it can bear.",
		},
		prayers: []domain.Action{
			navigate("Dua for Peace of Heart", "/duas/peace"),
			navigate("Dua for Protection", "/duas/protection"),
			navigate("Ayat al-Kursi", "/duas/ayat-al-kursi"),
		},
		suggestions: []string{"Try a few minutes of dhikr", "Recite Ayat al-Kursi", "Take a short walk and breathe"},
	},
	domain.EmotionGrateful: {
		messages: []string{
			"Gratitude is one of the most beautiful states of the heart. \"If you are grateful, I will surely increase you.\"",
			"Alhamdulillah! A grateful heart is a blessed heart. Keep that thankfulness close.",
		},
		prayers: []domain.Action{
			navigate("Dua of Gratitude", "/duas/gratitude"),
			navigate("Tasbih of Sayyida Fatima", "/duas/tasbih-fatima"),
		},
		suggestions: []string{"Write down three blessings", "Recite the Tasbih of Sayyida Fatima", "Thank someone today"},
	},
	domain.EmotionAngry: {
		messages: []string{
			"It sounds like something has upset you. When anger rises, it helps to pause, sit down, and make wudu.",
			"Anger is a natural feeling, but you don't have to carry it alone. Let's find a moment of calm together.",
		},
		prayers: []domain.Action{
			navigate("Dua for Patience", "/duas/patience"),
			navigate("Dua for Calming Anger", "/duas/calm"),
		},
		suggestions: []string{"Make wudu", "Recite istighfar", "Step away for a few minutes"},
	},
	domain.EmotionConfused: {
		messages: []string{
			"Feeling unsure is part of seeking knowledge. Let's work through it step by step.",
			"Confusion often comes before clarity. Would it help to explore the library on this topic?",
		},
		prayers: []domain.Action{
			navigate("Dua for Guidance", "/duas/guidance"),
			navigate("Dua for Knowledge", "/duas/knowledge"),
		},
		suggestions: []string{"Browse the library", "Pray Salat al-Istikhara", "Ask a scholar"},
	},
	domain.EmotionPeaceful: {
		messages: []string{
			"What a blessed feeling. May this peace stay with you throughout your day.",
			"Inner peace is a treasure. Perhaps this is a good moment for reflection and dhikr.",
		},
		prayers: []domain.Action{
			navigate("Morning Adhkar", "/duas/morning"),
			navigate("Salawat", "/duas/salawat"),
		},
		suggestions: []string{"Spend a moment in reflection", "Read a page of Quran", "Recite salawat"},
	},
	domain.EmotionWorried: {
		messages: []string{
			"I understand you're worried. Place your trust in Allah; He is the best of planners.",
			"Worry is a heavy load. Let's hand it over in prayer. Allah hears every whisper of the heart.",
		},
		prayers: []domain.Action{
			navigate("Dua for Ease", "/duas/ease"),
			navigate("Dua for Protection", "/duas/protection"),
		},
		suggestions: []string{"Recite Hasbunallah wa ni'mal wakeel", "Make a dua for ease", "Write down what worries you"},
	},
}

// emotionFallback is used if an emotion has no entry in emotionTable.
const emotionFallback = "Thank you for sharing how you feel. I'm here with you, and you can tell me more whenever you're ready."

var emotionQuickReplies = []string{
	"Tell me more",
	"Show me a dua",
	"I feel better now",
	"Recommend something",
}

// route is one reachable destination. Key is matched against the first
// navigation keyword by containment in either direction.
type route struct {
	key         string
	label       string
	target      string
	description string
}

// routes are tried in order.
var routes = []route{
	{"calendar", "Open Calendar", "/calendar", "The Islamic Calendar shows upcoming events, holy days, and the Hijri date."},
	{"ziyarat", "Open Ziyarat", "/ziyarat", "The Ziyarat section holds the visitation prayers for the Prophet, the Imams, and holy shrines."},
	{"prayer", "Open Prayer Times", "/prayer-times", "Prayer Times lists today's schedule for Fajr, Dhuhr, Asr, Maghrib, and Isha."},
	{"dua", "Open Duas", "/duas", "The Duas collection gathers supplications for every occasion and state of heart."},
	{"dashboard", "Open Dashboard", "/dashboard", "Your Dashboard shows your activity, favourites, and progress."},
	{"home", "Go Home", "/", "The Home page is the best place to start exploring."},
	{"library", "Open Library", "/library", "The Library contains books, audiobooks, and articles."},
	{"imam", "Open Imams", "/imams", "The Imams section tells the lives and teachings of the Ahl al-Bayt."},
}

const navigationFallback = "Where would you like to go? Here are the main sections:"

var navigationMenu = []domain.Action{
	navigate("Islamic Calendar", "/calendar"),
	navigate("Prayer Times", "/prayer-times"),
	navigate("Duas", "/duas"),
	navigate("Ziyarat", "/ziyarat"),
	navigate("Library", "/library"),
}

// practiceActions are shared by prayer and recommendation replies.
var practiceActions = []domain.Action{
	navigate("Full Prayer Schedule", "/prayer-times"),
	navigate("Daily Duas", "/duas"),
	navigate("Ziyarat", "/ziyarat"),
}

var prayerQuickReplies = []string{
	"When is the next prayer?",
	"Show me the duas after salah",
	"Set a prayer reminder",
	"Teach me how to pray",
}

const prayerGeneric = "I can help you with prayer times, the duas after salah, and guidance on how to pray. What would you like to know?"

const weeklyPractice = `Here is a simple practice for this week:

Morning: recite the morning adhkar after Fajr.
Afternoon: read a page of Quran after Dhuhr.
Evening: recite Dua Kumayl on Thursday night or a short dua before sleep.

This week:
- Give a small sadaqah
- Visit or call a family member
- Recite Ziyarat Ashura once`

// qaEntry is a canned answer served when trigger occurs in the message.
type qaEntry struct {
	trigger string
	answer  string
}

// qaTable is scanned in order; the first trigger contained in the message wins.
var qaTable = []qaEntry{
	{"ziyarat", "Ziyarat means visitation. It refers both to visiting the shrines of the Prophet and the Imams and to the words of greeting recited there or from afar."},
	{"dua kumayl", "Dua Kumayl is a supplication taught by Imam Ali to Kumayl ibn Ziyad. It is traditionally recited on Thursday nights."},
	{"ashura", "Ashura is the 10th of Muharram, the day Imam Hussain and his companions were martyred at Karbala in 61 AH."},
	{"arbaeen", "Arbaeen marks forty days after Ashura. Millions walk to Karbala to commemorate Imam Hussain."},
	{"ramadan", "Ramadan is the ninth month of the Islamic calendar, the month of fasting in which the Quran was revealed."},
	{"ghadir", "Eid al-Ghadir commemorates the Prophet's declaration at Ghadir Khumm on the 18th of Dhu al-Hijjah."},
	{"imam", "The twelve Imams are the successors of the Prophet from his family, beginning with Imam Ali and ending with Imam al-Mahdi."},
	{"how many prayers", "There are five daily prayers: Fajr, Dhuhr, Asr, Maghrib, and Isha."},
	{"wudu", "Wudu is the ritual washing before prayer: the face, the arms to the elbows, wiping the head, and wiping the feet."},
}

const questionDeflection = "That's a great question. I don't have a direct answer yet, but you can explore related topics in these sections:"

var questionActions = []domain.Action{
	navigate("Library", "/library"),
	navigate("Imams", "/imams"),
	navigate("Islamic Calendar", "/calendar"),
}

var greetingRE = regexp.MustCompile(`(?i)^\s*(?:hi|hello|hey|salam|salaam|assalam\w*)\b|السلام`)

var greetings = []string{
	"Salam! Welcome back.",
	"Assalamu alaikum! It's good to see you.",
	"Hello and peace be upon you!",
	"Hi there, salam!",
}

const greetingInvite = "How can I help you today? I can find duas, show prayer times, or just listen."

const capabilityOverview = "I'm your companion for prayer, duas, and reflection. I can show today's prayer times, guide you through the calendar, suggest duas for how you feel, and answer questions about the Imams and holy days."

var capabilityActions = []domain.Action{
	navigate("Prayer Times", "/prayer-times"),
	navigate("Duas", "/duas"),
	navigate("Islamic Calendar", "/calendar"),
}
