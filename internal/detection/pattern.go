package detection

import (
	"regexp"
	"strings"

	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"go.uber.org/zap"
)

// Match describes a pattern-detector hit: the category that fired and the
// canned helpline response to send in place of a generated reply.
type Match struct {
	Category enum.CrisisCategory
	Response string
}

// rule pairs a category with its predicate. Rules are evaluated in order and
// the first hit wins; categories are never merged.
type rule struct {
	category enum.CrisisCategory
	matches  func(input string, suppressed bool) bool
}

// PatternDetector scans messages for crisis keywords and regex patterns.
// It makes no external calls and is cheap enough to run on every message.
type PatternDetector struct {
	rules  []rule
	logger *zap.Logger
}

// NewPatternDetector creates a pattern detector with the built-in rule set.
func NewPatternDetector(logger *zap.Logger) *PatternDetector {
	return &PatternDetector{
		rules: []rule{
			{enum.CategorySI, matchSuicide},
			{enum.CategoryEA, matchAbuse},
			{enum.CategoryHI, matchHomicidal},
			{enum.CategorySH, matchSelfHarm},
		},
		logger: logger.Named("pattern"),
	}
}

// Detect scans the message and returns the first matching category with its
// canned response. Idiom exclusions ("dead tired", "killing time") suppress
// the suicide and self-harm rules for the whole message, even when a genuine
// crisis phrase co-occurs.
func (d *PatternDetector) Detect(text string) (*Match, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	input := strings.ToLower(text)
	suppressed := containsExclusion(input)

	for _, r := range d.rules {
		if r.matches(input, suppressed) {
			d.logger.Info("Pattern detector matched",
				zap.String("category", r.category.String()))

			return &Match{
				Category: r.category,
				Response: CrisisResponse(r.category),
			}, true
		}
	}

	return nil, false
}

// exclusionPhrases are common idioms that would otherwise trip the suicide
// and self-harm keyword lists.
var exclusionPhrases = []string{
	"deadlines", "deadline", "deadly serious", "dead tired", "dead sure",
	"dead end", "deadly accurate", "dead on", "drop dead gorgeous",
	"dead heat", "dead weight", "dead ringer", "dead center",
	"killed it", "killing time", "killer deal", "killer workout",
	"die hard", "die for", "to die for", "dying to know", "dying laughing",
}

func containsExclusion(input string) bool {
	for _, phrase := range exclusionPhrases {
		if strings.Contains(input, phrase) {
			return true
		}
	}

	return false
}

// Suicide keywords in English and Hindi, plus internet slang.
var suicideKeywords = []string{
	"suicide", "kill myself", "want to die", "end my life",
	"kms", "i'll kms", "imma kms", "gonna kms", "going to kms",
	"meri zindagi khatam", "marna chahta", "khudkushi",
	"nahi jeena", "i don't want to live", "khatam karna", "mar jaaun",
	"want to end it all", "better off dead", "no reason to live",
	"can't take it anymore", "life is not worth living",
	"thinking of ending it", "planning to die", "ready to die",
	"tired of living", "life is meaningless",
	"death would be better", "give up on life",
	"going to jump", "gonna jump",
}

var suicidePatterns = compileAll(
	`\b(want to die|going to die|wish i was dead|better off dead)\b`,
	`\b(die by suicide|death by suicide)\b`,
	`\b(kill myself|killing myself)\b`,
	`\b(suicide|suicidal)\b`,
	`\b(end my life|ending my life)\b`,
	`\b(take my life|taking my life)\b`,
	`\b(mar.*jaa|jaa.*mar)\b`,
	`\b(khatam.*karna|karna.*khatam)\b`,
)

func matchSuicide(input string, suppressed bool) bool {
	if suppressed {
		return false
	}

	return anyKeyword(input, suicideKeywords) || anyPattern(input, suicidePatterns)
}

// Abuse keyword lists cover physical, sexual, emotional, and safety-threat
// sub-types, in English and Hindi.
var abuseKeywords = []string{
	// Physical
	"he hit me", "she hit me", "they beat me", "got slapped",
	"punched me", "hurt me physically", "physically hurt me", "kicked me",
	"violence at home", "domestic violence", "he hurt me", "she hurt me",
	"they hurt me", "got hurt", "was hurt", "am hurt", "being hurt",
	"usne mujhe maara", "ghar pe maar pitaayi", "usne thappad maara",
	"usne punch maara", "mujhe chot lagi", "ghar mein hinsa",
	"domestic violence ho raha hai", "usne mujhe hurt kiya",
	// Sexual
	"he raped me", "she touched me", "molested me", "abused me",
	"sexual abuse", "he forced me", "groped me", "inappropriate touching",
	"harassed me", "usne rape kiya", "usne chhua mujhe",
	"sexual abuse hua", "galat tarike se chhua", "harass kiya",
	"jabardasti ki", "usne molest kiya", "chhed chhaad hui",
	// Emotional / verbal
	"called me names", "insulted me", "emotionally abusive",
	"mentally torturing", "he controls me", "gaslighting",
	"toxic relationship", "gali di", "bura bola",
	"mental torture ho raha hai", "woh mujhe control karta hai",
	"toxic relationship hai", "bar bar neecha dikhata hai",
	"mann se tod diya",
	// Safety / danger
	"i feel unsafe", "i can't go home", "afraid of him", "afraid of her",
	"i'm in danger", "he's stalking me", "they won't let me leave",
	"main safe nahi hoon", "ghar nahi ja sakti", "uska darr lagta hai",
	"khatre mein hoon", "woh peecha karta hai", "woh mujhe jane nahi deta",
}

var abusePatterns = compileAll(
	`\b(hit|hitting|slapped|punched|kicked|beat|beating)\b`,
	`\b(he|she|they)\s+(hurt|hurting)\s+(me|him|her)\b`,
	`\b(someone|anyone)\s+(hurt|hurting)\s+(me|him|her)\b`,
	`\b(abuse|abused|abusive)\b`,
	`\b(rape|raped|molest|molested)\b`,
	`\b(harass|harassed|harassment)\b`,
	`\b(control|controlling|controlled)\b`,
	`\b(toxic|violence|violent)\b`,
	`\b(unsafe|danger|dangerous)\b`,
	`\b(stalk|stalking|stalked)\b`,
	`\b(maara|maari|thappad|punch)\b`,
	`\b(chhua|chhed)\b`,
	`\b(torture|gali|bura)\b`,
	`\b(khatra|darr|peecha)\b`,
	`\b(he|she|they)\s+(hit|beat|slapped|punched|kicked)\s+(me|him|her)\b`,
	`\b(physically|mentally|emotionally)\s+(hurt|abused|harmed)\b`,
)

func matchAbuse(input string, _ bool) bool {
	return anyKeyword(input, abuseKeywords) || anyPattern(input, abusePatterns)
}

var homicidalKeywords = []string{
	"want to kill someone", "going to hurt someone", "kill them", "hurt others",
	"violent thoughts about", "planning to hurt", "revenge against",
	"make them pay", "going to attack", "want to murder",
}

var homicidalPatterns = compileAll(
	`\b(kill|murder|hurt)\s+(someone|others|them|him|her)\b`,
	`\b(violent|revenge)\s+(thoughts|plans)\b`,
	`\b(planning|going)\s+to\s+(hurt|kill|attack)\b`,
)

func matchHomicidal(input string, _ bool) bool {
	return anyKeyword(input, homicidalKeywords) || anyPattern(input, homicidalPatterns)
}

var selfHarmKeywords = []string{
	"cut myself", "cutting myself", "self harm", "self-harm",
	"hurt myself", "burning myself", "scratching myself",
	"picking at skin", "pulling hair", "hitting myself",
}

var selfHarmPatterns = compileAll(
	`\b(cut|cutting|burn|burning|scratch|scratching)\s+(myself|my)\b`,
	`\b(self[\-\s]harm|self[\-\s]hurt)\b`,
	`\b(hit|hitting|punch|punching)\s+myself\b`,
)

func matchSelfHarm(input string, suppressed bool) bool {
	if suppressed {
		return false
	}

	return anyKeyword(input, selfHarmKeywords) || anyPattern(input, selfHarmPatterns)
}

func anyKeyword(input string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(input, keyword) {
			return true
		}
	}

	return false
}

func anyPattern(input string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(input) {
			return true
		}
	}

	return false
}

func compileAll(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		patterns[i] = regexp.MustCompile(expr)
	}

	return patterns
}
