package lexicon

// Default valence lexicon. Every match contributes DefaultWeight regardless of word.
var defaultPositive = []string{
	"good", "great", "excellent", "awesome", "amazing", "happy", "love", "loved",
	"loves", "like", "likes", "positive", "best", "better", "wonderful", "fantastic",
	"brilliant", "superb", "outstanding", "perfect", "pleased", "delighted", "enjoy",
	"enjoyed", "beautiful", "nice", "success", "successful", "succeed", "win", "wins",
	"won", "winning", "gain", "gains", "profit", "profits", "growth", "grow", "surge",
	"soar", "soared", "rally", "rallies", "boost", "boosted", "strong", "stronger",
	"record", "improve", "improved", "improvement", "recover", "recovery", "upbeat",
	"optimistic", "optimism", "breakthrough", "praise", "praised", "celebrate",
	"hope", "hopeful", "peace", "safe", "support", "benefit", "thrive", "up",
}

var defaultNegative = []string{
	"bad", "terrible", "awful", "horrible", "worst", "worse", "hate", "hated", "hates",
	"sad", "angry", "anger", "negative", "dislike", "poor", "disappointing",
	"disappointed", "fail", "fails", "failed", "failure", "loss", "losses", "lose",
	"lost", "drop", "drops", "dropped", "fall", "falls", "fell", "decline", "declined",
	"crash", "crashed", "plunge", "plunged", "slump", "weak", "weaker", "crisis",
	"risk", "fear", "fears", "worry", "worried", "concern", "concerns", "scandal",
	"fraud", "lawsuit", "war", "attack", "attacks", "killed", "death", "deaths",
	"violence", "protest", "protests", "recession", "layoffs", "cut", "cuts",
	"pessimistic", "collapse", "collapsed", "threat", "danger", "broken", "down",
}

// Negators flip the polarity of a sentiment word that follows within NegationWindow tokens
var defaultNegators = []string{
	"not", "no", "never", "none", "nobody", "nothing", "neither", "nor", "cannot",
	"without", "hardly", "barely",
}

// Fallback word lists used by the learned scorer when its model is unavailable
var fallbackPositive = []string{
	"good", "great", "excellent", "awesome", "happy", "love", "positive", "like",
	"up", "gain", "profit", "success",
}

var fallbackNegative = []string{
	"bad", "terrible", "awful", "hate", "sad", "angry", "negative", "dislike",
	"down", "loss", "drop", "fail",
}
