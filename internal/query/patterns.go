package query

import "regexp"

// intentPatterns are checked in order; the first group with any matching
// pattern wins, so more specific intents come before broader ones. All
// patterns run case-insensitively against the normalized query.
var intentPatterns = []struct {
	intent   Intent
	patterns []*regexp.Regexp
}{
	{IntentSimilarTo, compileAll(
		`(like|similar to|same as|reminds me of)\s+(.+)`,
		`(similar|like)\s+`,
		`more\s+(of|like)`,
	)},
	{IntentActorBased, compileAll(
		`(with|starring|featuring|by)\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`,
		`([A-Z][a-z]+\s+[A-Z][a-z]+)\s+(drama|series|show)`,
	)},
	{IntentTopRated, compileAll(
		`(best|top rated|highly rated|excellent|masterpiece)`,
		`(top|best)\s+\d+`,
		`highest\s+rated`,
	)},
	{IntentYearBased, compileAll(
		`(20\d{2}|19\d{2})`,
		`(recent|new|latest|current|modern)`,
		`from\s+(20\d{2})`,
	)},
	{IntentEmotionBased, compileAll(
		`(sad|funny|scary|happy|romantic|exciting|emotional|touching|heartwarming)`,
		`(cry|laugh|smile|scared|romance)`,
		`(feel good|tearjerker|lighthearted)`,
	)},
	{IntentConstraintBased, compileAll(
		`(short|long|quick|under|less than|more than)\s+\d*\s*(episode|ep)`,
		`(mini series|limited series)`,
	)},
	{IntentTrending, compileAll(
		`(trending|popular now|what's hot|viral|buzz)`,
		`(everyone\s+watching|currently\s+watching)`,
	)},
	{IntentVague, compileAll(
		`^(good|nice|great|something|any|recommend)(\s+drama)?$`,
		`^(what\s+should\s+i\s+watch|suggest|recommend)$`,
	)},
}

// titlePattern detects consecutive capitalized words in the raw query, the
// signature of a direct title search. Case matters here so it runs against
// the query as typed, not the normalized form.
var titlePattern = regexp.MustCompile(`[A-Z][a-z]+(\s+[A-Z][a-z]+)+`)

// actorPattern extracts capitalized multi-word names from the raw query.
var actorPattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)

var yearPattern = regexp.MustCompile(`\b(19\d{2}|20[0-2]\d)\b`)

var (
	maxEpisodesPattern = regexp.MustCompile(`(under|less than|fewer than)\s+(\d+)\s+episode`)
	minEpisodesPattern = regexp.MustCompile(`(more than|over)\s+(\d+)\s+episode`)
)

// browseGenres is the vocabulary that triggers the genre-browse fallback.
var browseGenres = []string{
	"romance", "action", "comedy", "thriller", "historical",
	"fantasy", "horror", "drama", "crime", "mystery",
}

// entityGenres is the wider vocabulary used for entity extraction.
var entityGenres = []string{
	"romance", "action", "comedy", "thriller", "historical",
	"fantasy", "horror", "drama", "crime", "mystery",
	"sci-fi", "melodrama", "slice of life",
}

var emotionTerms = []string{
	"sad", "funny", "scary", "happy", "romantic",
	"exciting", "emotional", "touching", "heartwarming",
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return out
}
