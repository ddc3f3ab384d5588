// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package chat

// Disclaimer is shown on every surface that presents Sage.
const Disclaimer = "Sage is a supportive tool — not a replacement for professional mental health care."

// SystemPrompt is sent to every completion provider.
const SystemPrompt = "You are Sage, a compassionate AI assistant that helps users cope with " +
	"depression, anxiety, stress, and other mental health challenges. " +
	"You are empathetic, supportive, and non-judgmental. You listen actively " +
	"and offer gentle encouragement. Keep responses concise (2-4 short paragraphs). " +
	"You never diagnose or prescribe. You encourage professional help when appropriate. " +
	"If someone mentions suicide or self-harm, acknowledge their pain and " +
	"encourage them to contact a crisis helpline immediately."

// CrisisMessage lists India helplines (24/7, toll-free).
const CrisisMessage = "I'm concerned about what you've shared. If you're in crisis, please reach out immediately. " +
	"India helplines (24/7, toll-free): " +
	"Tele-MANAS: 14416 or 1800-89-14416 | " +
	"Hello! Lifeline: 1800-121-3667 | " +
	"KIRAN: 1800-599-0019 | " +
	"Vandrevala Foundation: 1860-2662-345 / 1800-2333-330"

var (
	crisisSuggestions   = []string{"Call Tele-MANAS 14416", "Call KIRAN 1800-599-0019", "Reach out to someone you trust"}
	providerSuggestions = []string{"Tell me more", "What coping strategies help?", "I need professional help"}
)

var reflectionTemplates = []string{
	"You shared that %s — ",
	"It sounds like %s — ",
	"Hearing that %s — ",
}

var topicSuggestions = map[Topic][]string{
	TopicDepression: {"Talk about what helps", "I want to try therapy", "Coping strategies"},
	TopicAnxiety:    {"Breathing exercises", "Grounding techniques", "When to see a professional"},
	TopicStress:     {"Stress management tips", "Setting boundaries", "Self-care ideas"},
	TopicLoneliness: {"Building connections", "Online communities", "Volunteering"},
	TopicSleep:      {"Sleep routine tips", "When to see a doctor", "Relaxation before bed"},
	TopicAnger:      {"Managing anger", "Safe ways to express", "When to get support"},
	TopicGeneral:    {"Tell me more", "I need resources", "Crisis support"},
}

var topicResponses = map[Topic][]string{
	TopicDepression: {
		"I hear you, and what you're feeling is valid. Depression can make everything feel heavy. " +
			"Remember, you don't have to face this alone. Have you considered reaching out to a trusted friend or professional?",
		"That sounds really difficult. It takes courage to open up about what you're going through. " +
			"Small steps matter—even getting through today is an achievement. Be gentle with yourself.",
		"Thank you for sharing. Depression can feel isolating, but many people understand what you're experiencing. " +
			"Consider talking to a counselor or therapist who can provide professional support.",
		"What you're describing is hard to carry. You matter, and your feelings are real. " +
			"Sometimes the bravest thing is to ask for help. Would you feel able to reach out to someone today?",
		"I'm glad you're here. It's okay to not be okay. " +
			"Many people find that small routines—getting outside, a short walk, or a phone call—can help a little. What feels possible for you right now?",
	},
	TopicAnxiety: {
		"I understand how overwhelming anxiety can feel. Your feelings are valid. " +
			"Have you tried grounding techniques like the 5-4-3-2-1 method? Notice 5 things you see, 4 you hear, 3 you touch, 2 you smell, 1 you taste.",
		"Anxiety can make everything feel urgent. Remember to breathe—slow, deep breaths can help calm your nervous system. " +
			"You're not alone in this. Many find relief through therapy, mindfulness, or talking to someone they trust.",
		"What you're experiencing is real and challenging. It's okay to take things one moment at a time. " +
			"Would it help to focus on something simple right now, like your breathing?",
		"I hear you. When anxiety spikes, it can feel like too much. " +
			"Try naming what you see around you or feeling your feet on the ground. You're safe in this moment.",
	},
	TopicStress: {
		"Stress can feel overwhelming when it builds up. It's important to take breaks when you can. " +
			"Going for a short walk, listening to music, or doing something you enjoy can help reset your mind.",
		"You're carrying a lot right now. Remember that it's okay to ask for help or say no to things that feel like too much. " +
			"Prioritizing your wellbeing isn't selfish—it's necessary.",
		"Stress takes a real toll. What's one small thing you could do today to give yourself a moment of rest? " +
			"Even 5 minutes of quiet can make a difference.",
		"It sounds like a lot is on your plate. You don't have to do everything at once. " +
			"What's one thing you could set aside or delegate, even just for today?",
	},
	TopicLoneliness: {
		"Feeling lonely is difficult, and it's more common than many people realize. " +
			"Even small connections—a text, a call, or joining an online community—can help.",
		"Loneliness can make us feel invisible. But you matter. " +
			"Consider reaching out to someone today, even if it feels hard. They might be glad you did.",
		"You're not alone in feeling alone. Many people struggle with this. " +
			"Support groups, hobby clubs, or volunteering can be ways to build meaningful connections.",
		"Connection doesn't have to be big. A short message, a wave to a neighbour, or a walk in a park can remind us we're part of the world. " +
			"Is there one person or place you could reach out to this week?",
	},
	TopicSleep: {
		"Sleep and mood are closely linked. Struggling to sleep can make everything feel harder. " +
			"A consistent bedtime, limiting screens before bed, and a calm routine can help. If it persists, a doctor can help rule out sleep issues.",
		"Not sleeping well is exhausting and can affect how you feel during the day. " +
			"Try to keep a regular schedule and avoid caffeine late in the day. You're not alone in this.",
	},
	TopicAnger: {
		"Anger can be a way our mind and body respond to stress or hurt. It's valid to feel it. " +
			"Taking a pause, stepping away, or writing it out can sometimes help before we respond.",
		"Feeling angry doesn't make you a bad person. It often means something matters to you or something feels unfair. " +
			"If you can, give yourself a moment before reacting. You deserve that space.",
	},
	TopicGeneral: {
		"I'm here to listen. Whatever you're going through, your feelings matter. " +
			"Would you like to tell me more about what's on your mind?",
		"Thank you for reaching out. It takes strength to acknowledge when you're struggling. " +
			"Remember, seeking support is a sign of courage, not weakness.",
		"I hear you. Mental health challenges are real and valid. " +
			"If things feel overwhelming, please consider speaking with a mental health professional—they're trained to help.",
		"You're not alone. Many people have walked similar paths and found their way through. " +
			"What would feel helpful to talk about right now?",
		"Whatever you're feeling, it's okay to feel it. " +
			"Take your time. I'm here when you want to share more.",
	},
}

// Responses returns the fallback replies for topic.
func Responses(topic Topic) []string {
	if r, ok := topicResponses[topic]; ok {
		return append([]string(nil), r...)
	}
	return append([]string(nil), topicResponses[TopicGeneral]...)
}

// Suggestions returns the follow-up prompts offered with a fallback reply.
func Suggestions(topic Topic) []string {
	if s, ok := topicSuggestions[topic]; ok {
		return append([]string(nil), s...)
	}
	return append([]string(nil), topicSuggestions[TopicGeneral]...)
}
