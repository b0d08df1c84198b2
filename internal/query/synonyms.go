package query

// synonyms maps query terms to expansion candidates, best first. Expansion
// takes at most the first two entries per term to keep expanded queries from
// drowning the original words.
var synonyms = map[string][]string{
	// Emotions
	"funny":    {"comedy", "humorous", "lighthearted", "hilarious", "witty"},
	"sad":      {"melodrama", "tearjerker", "emotional", "tragic", "touching"},
	"scary":    {"horror", "thriller", "suspense", "creepy", "dark"},
	"happy":    {"uplifting", "cheerful", "feel-good", "heartwarming", "joyful"},
	"romantic": {"romance", "love story", "romantic", "sweet"},
	"exciting": {"action", "thrilling", "intense", "fast-paced"},

	// Time
	"old":    {"classic", "vintage", "retro", "90s", "2000s"},
	"new":    {"recent", "latest", "modern", "current", "2023", "2024", "2025"},
	"recent": {"new", "latest", "modern", "current"},

	// Quality
	"best":    {"top rated", "highly rated", "excellent", "masterpiece"},
	"good":    {"great", "quality", "recommended", "popular"},
	"popular": {"trending", "famous", "well-known", "hit"},

	// Length
	"short": {"mini series", "few episodes", "quick watch"},
	"long":  {"many episodes", "extended", "lengthy series"},
}

// maxSynonymsPerTerm bounds how many synonyms join the expanded query.
const maxSynonymsPerTerm = 2
