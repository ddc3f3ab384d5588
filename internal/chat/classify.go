// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package chat

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Topic is the coarse subject of a message.
type Topic string

const (
	TopicDepression Topic = "depression"
	TopicAnxiety    Topic = "anxiety"
	TopicStress     Topic = "stress"
	TopicLoneliness Topic = "loneliness"
	TopicSleep      Topic = "sleep"
	TopicAnger      Topic = "anger"
	TopicGeneral    Topic = "general"
)

var crisisKeywords = []string{
	"suicide", "suicidal", "kill myself", "end my life", "want to die", "self-harm", "hurt myself",
}

type topicRule struct {
	topic    Topic
	keywords []string
}

// topicRules are checked in order; the first match wins. "tired" appears in
// both stress and sleep, so it always resolves to stress.
var topicRules = []topicRule{
	{TopicDepression, []string{"depress", "sad", "hopeless", "empty", "worthless", "down", "low"}},
	{TopicAnxiety, []string{"anxious", "anxiety", "panic", "worry", "worried", "nervous", "scared"}},
	{TopicStress, []string{"stress", "stressed", "overwhelm", "pressure", "busy", "tired"}},
	{TopicLoneliness, []string{"lonely", "alone", "isolat", "disconnect", "no one", "friend"}},
	{TopicSleep, []string{"sleep", "insomnia", "tired", "exhausted", "can't sleep"}},
	{TopicAnger, []string{"angry", "anger", "frustrat", "irritat", "mad"}},
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "‑", "-", "‐", "-")

// normalize folds compatibility forms, typographic apostrophes and hyphens,
// and case so keyword matching sees what the user meant.
func normalize(msg string) string {
	return strings.ToLower(apostrophes.Replace(norm.NFKC.String(msg)))
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// IsCrisis reports whether msg mentions suicide or self-harm.
func IsCrisis(msg string) bool {
	return containsAny(normalize(msg), crisisKeywords)
}

// DetectTopic classifies msg by substring keywords.
func DetectTopic(msg string) Topic {
	lower := normalize(msg)
	for _, rule := range topicRules {
		if containsAny(lower, rule.keywords) {
			return rule.topic
		}
	}
	return TopicGeneral
}

const reflectionMaxWords = 8

// ShortReflection extracts the opening words of msg to mirror back, or ""
// when the message is too short to reflect.
func ShortReflection(msg string) string {
	msg = strings.TrimSpace(msg)
	if utf8.RuneCountInString(msg) < 10 {
		return ""
	}
	first := msg
	if i := strings.IndexAny(msg, ".!?"); i >= 0 {
		first = msg[:i]
	}
	words := strings.Fields(first)
	if len(words) > reflectionMaxWords {
		words = words[:reflectionMaxWords]
	}
	if len(words) < 2 {
		return ""
	}
	return strings.ToLower(strings.Join(words, " "))
}
