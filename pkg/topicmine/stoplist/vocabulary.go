package stoplist

// Vocabulary holds every fixed word set the topic miner consults.
// The zero value is empty; DefaultVocabulary returns the built-in sets.
type Vocabulary struct {
	English   []string // standard English stopwords
	Noise     []string // newsletter noise that is never a topic on its own
	Weekdays  []string
	Months    []string
	Layout    []string // markup and structural vocabulary
	Metadata  []string // hiring, subscription, account and billing vocabulary
	Billing   []string // combined with a month name, marks statement-style mail
	Breaking  []string // urgency indicators in subject lines
	CoreTerms []string // domain terms that rescue a soft-filtered candidate
}

// DefaultVocabulary returns the built-in word sets.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		English:   copyOf(englishStopwords),
		Noise:     copyOf(noiseTerms),
		Weekdays:  copyOf(weekdays),
		Months:    copyOf(months),
		Layout:    copyOf(layoutTerms),
		Metadata:  copyOf(metadataTerms),
		Billing:   copyOf(billingTerms),
		Breaking:  copyOf(breakingIndicators),
		CoreTerms: copyOf(coreTerms),
	}
}

// Merge returns v extended with every word of other.
func (v Vocabulary) Merge(other Vocabulary) Vocabulary {
	return Vocabulary{
		English:   union(v.English, other.English),
		Noise:     union(v.Noise, other.Noise),
		Weekdays:  union(v.Weekdays, other.Weekdays),
		Months:    union(v.Months, other.Months),
		Layout:    union(v.Layout, other.Layout),
		Metadata:  union(v.Metadata, other.Metadata),
		Billing:   union(v.Billing, other.Billing),
		Breaking:  union(v.Breaking, other.Breaking),
		CoreTerms: union(v.CoreTerms, other.CoreTerms),
	}
}

func copyOf(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, w := range list {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what",
	"which", "who", "whom", "this", "that", "that'll", "these", "those", "am", "is",
	"are", "was", "were", "be", "been", "being", "have", "has", "had", "having",
	"do", "does", "did", "doing", "a", "an", "the", "and", "but", "if", "or",
	"because", "as", "until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before", "after", "above",
	"below", "to", "from", "up", "down", "in", "out", "on", "off", "over", "under",
	"again", "further", "then", "once", "here", "there", "when", "where", "why",
	"how", "all", "any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than", "too", "very",
	"s", "t", "can", "will", "just", "don", "don't", "should", "should've", "now",
	"d", "ll", "m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn",
	"couldn't", "didn", "didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn",
	"hasn't", "haven", "haven't", "isn", "isn't", "ma", "mightn", "mightn't",
	"mustn", "mustn't", "needn", "needn't", "shan", "shan't", "shouldn",
	"shouldn't", "wasn", "wasn't", "weren", "weren't", "won", "won't", "wouldn",
	"wouldn't", "also", "would", "could", "said", "says", "get", "got", "make",
	"made", "many", "much", "well", "even", "still", "every", "within", "without",
}

var noiseTerms = []string{
	"ai", "artificial", "intelligence", "ml", "model", "models", "news",
	"newsletter", "week", "weekly", "new", "https", "http", "com", "www", "email",
	"subscribe", "click", "link", "read", "more", "today", "tomorrow",
	"yesterday", "month", "year", "day", "time", "latest", "view", "image",
	"caption", "alt", "photo", "picture", "thumbnail", "gif", "unsubscribe",
	"update", "preferences", "profile", "contact", "privacy", "policy", "terms",
	"service", "copyright", "minute", "minutes", "hour", "hours", "second",
	"seconds", "like", "similar", "compared", "example",
}

var weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var months = []string{
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
}

var layoutTerms = []string{
	"table", "header", "footer", "thumbnail", "caption", "unsubscribe", "banner",
	"sidebar", "column", "logo", "icon", "button", "width", "height", "padding",
	"margin", "font", "border", "align", "spacer", "pixel", "html", "href",
	"mailto", "nbsp", "png", "jpg", "jpeg", "gif", "webview", "browser",
	"preview", "template", "layout", "menu", "navigation", "image", "alt",
}

var metadataTerms = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"hiring", "hire", "job", "jobs", "apply", "position", "career", "careers",
	"recruiting", "recruiter", "salary", "resume", "subscribe", "subscribed",
	"subscriber", "subscribers", "subscription", "account", "billing", "invoice",
	"payment", "statement", "balance", "bill", "debit", "directpay", "login",
	"password", "signup", "premium", "upgrade", "renew", "receipt", "sponsor",
	"sponsored", "advertise", "advertisement", "referral", "inbox",
}

var billingTerms = []string{
	"account", "payment", "statement", "bill", "billing", "invoice", "balance",
}

var breakingIndicators = []string{
	"breaking", "just in", "just announced", "new release", "launches",
	"launched", "announces", "announced", "releases", "released", "introduces",
	"introduced", "unveils", "unveiled", "debuts", "just now",
}

var coreTerms = []string{
	"ai", "artificial", "intelligence", "ml", "model", "models", "llm", "llms",
	"agent", "agents", "neural", "learning",
}
