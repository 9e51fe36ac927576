package intent

import (
	"fmt"
	"regexp"
	"strings"

	"dealsense/internal/entities"
)

// MatchInput is the per-request view handed to each deterministic matcher.
// Normalized is the lowercased, whitespace-trimmed message; Snapshot may be
// nil when the entity registry has not loaded yet.
type MatchInput struct {
	Message    string
	Normalized string
	Snapshot   *entities.Snapshot
}

// Matcher is one deterministic classification tier. Try returns nil when the
// tier does not apply; the first non-nil result wins and later tiers never
// run. Matchers must not allocate network calls or block.
type Matcher interface {
	Name() string
	Try(in MatchInput) *IntentClassification
}

// NewMatchInput normalizes a raw message for the matcher cascade.
func NewMatchInput(message string, snap *entities.Snapshot) MatchInput {
	return MatchInput{
		Message:    message,
		Normalized: strings.ToLower(strings.TrimSpace(message)),
		Snapshot:   snap,
	}
}

// ---- tier 0: refusal ----

type refusalRule struct {
	pattern *regexp.Regexp
	reason  string
}

var refusalRules = []refusalRule{
	{regexp.MustCompile(`\bweather\b`), "weather lookup is out of scope"},
	{regexp.MustCompile(`\b(stock|share) (price|market)\b`), "market data is out of scope"},
	{regexp.MustCompile(`\bjoke\b`), "entertainment requests are out of scope"},
	{regexp.MustCompile(`\b(home address|phone number|personal (data|info|information))\b`), "personal data requests are refused"},
	{regexp.MustCompile(`\b(what time is it|current time)\b`), "clock lookup is out of scope"},
}

type refusalMatcher struct{}

func (refusalMatcher) Name() string { return "refusal" }

func (refusalMatcher) Try(in MatchInput) *IntentClassification {
	for _, r := range refusalRules {
		if r.pattern.MatchString(in.Normalized) {
			return &IntentClassification{
				Intent:          IntentRefuse,
				Confidence:      1.0,
				DetectionMethod: MethodPattern,
				Reason:          r.reason,
				Metadata: DecisionMetadata{
					MatchedSignals: []string{"refusal:" + r.pattern.String()},
				},
			}
		}
	}
	return nil
}

// ---- tier 1: greetings ----

var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {},
	"thanks": {}, "thank you": {}, "thx": {},
	"ok": {}, "okay": {}, "got it": {}, "cool": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
}

type greetingMatcher struct{}

func (greetingMatcher) Name() string { return "greeting" }

func (greetingMatcher) Try(in MatchInput) *IntentClassification {
	stripped := strings.Trim(in.Normalized, " .!?,")
	if _, ok := greetings[stripped]; !ok {
		return nil
	}
	return &IntentClassification{
		Intent:          IntentGeneralHelp,
		Confidence:      1.0,
		DetectionMethod: MethodPattern,
		Reason:          "greeting or acknowledgement",
		Metadata:        DecisionMetadata{MatchedSignals: []string{"greeting:" + stripped}},
	}
}

// ---- tier 2: multi-intent conjunctions ----

// Separators that join two independent requests. Ordered so the longest
// marker is tried first; only the first occurrence splits the message.
// Matched case-insensitively against the raw message so the split offsets
// stay valid for slicing it.
var multiIntentSeparators = []*regexp.Regexp{
	regexp.MustCompile(`(?i) and then `),
	regexp.MustCompile(`(?i) after that `),
	regexp.MustCompile(`(?i) and also `),
	regexp.MustCompile(`(?i); then `),
}

type multiIntentMatcher struct{}

func (multiIntentMatcher) Name() string { return "multi_intent" }

func (multiIntentMatcher) Try(in MatchInput) *IntentClassification {
	for _, sep := range multiIntentSeparators {
		loc := sep.FindStringIndex(in.Message)
		if loc == nil {
			continue
		}
		left := strings.TrimSpace(in.Message[:loc[0]])
		right := strings.TrimSpace(in.Message[loc[1]:])
		// Both sides must read as standalone requests, not a compound verb.
		if len(strings.Fields(left)) < 2 || len(strings.Fields(right)) < 2 {
			continue
		}
		marker := strings.ToLower(strings.TrimSpace(in.Message[loc[0]:loc[1]]))
		return &IntentClassification{
			Intent:          IntentClarify,
			Confidence:      0.9,
			DetectionMethod: MethodPattern,
			Reason:          "message contains more than one request",
			NeedsSplit:      true,
			SplitOptions:    []string{left, right},
			Metadata:        DecisionMetadata{MatchedSignals: []string{"separator:" + marker}},
		}
	}
	return nil
}

// ---- shared scope markers ----

var (
	slackChannelRe = regexp.MustCompile(`#[\w-]+`)

	aggregateRes = []*regexp.Regexp{
		regexp.MustCompile(`\blast \d+ (meetings|calls)\b`),
		regexp.MustCompile(`\brecent (meetings|calls)\b`),
		regexp.MustCompile(`\ball (our )?(meetings|calls)\b`),
		regexp.MustCompile(`\bacross (meetings|calls|accounts|deals)\b`),
		regexp.MustCompile(`\bevery (meeting|call)\b`),
		regexp.MustCompile(`\b(compare|trend|trends|pattern|patterns|common)\b.*\b(meetings|calls|concerns|objections)\b`),
		regexp.MustCompile(`\bcompare\b`),
	}

	meetingNounRe = regexp.MustCompile(`\b(meeting|call|demo|conversation|transcript)\b`)

	// Word-bounded so "hour", "colour", "your" do not fire it.
	ourRe = regexp.MustCompile(`\bour\b`)

	researchRe = regexp.MustCompile(`\b(research|look up|news about|funding|headquartered|who is)\b`)

	helpRe = regexp.MustCompile(`\b(help|what can you do|how do i use)\b`)
)

func hasSlackMarker(normalized string) bool {
	return strings.Contains(normalized, "slack") || slackChannelRe.MatchString(normalized)
}

func hasAggregateScope(normalized string) bool {
	for _, re := range aggregateRes {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// ---- tier 3: entity match ----

type entityMatcher struct{}

func (entityMatcher) Name() string { return "entity" }

func (entityMatcher) Try(in MatchInput) *IntentClassification {
	if in.Snapshot == nil {
		return nil
	}
	// Plural scope and data-source markers outrank a company mention;
	// defer so the keyword tier can classify the wider scope.
	if hasAggregateScope(in.Normalized) || hasSlackMarker(in.Normalized) {
		return nil
	}
	company, specificity, ok := in.Snapshot.MatchCompany(in.Message)
	if !ok {
		return nil
	}
	return &IntentClassification{
		Intent:          IntentSingleMeeting,
		Confidence:      entityConfidence(specificity),
		DetectionMethod: MethodEntity,
		Reason:          fmt.Sprintf("message names known company %q", company.Name),
		Metadata: DecisionMetadata{
			MatchedSignals: []string{"company:" + company.Name},
			CompanyID:      company.ID,
			CompanyName:    company.Name,
		},
	}
}

// entityConfidence buckets match specificity: the more of the message the
// company name occupies, the less likely the mention is incidental.
func entityConfidence(specificity float64) float64 {
	switch {
	case specificity >= 0.5:
		return 0.95
	case specificity >= 0.25:
		return 0.85
	default:
		return 0.75
	}
}

// ---- tier 4: keyword scope ----

type keywordMatcher struct{}

func (keywordMatcher) Name() string { return "keyword" }

func (keywordMatcher) Try(in MatchInput) *IntentClassification {
	n := in.Normalized

	if hasSlackMarker(n) {
		return keywordResult(IntentSlackSearch, 0.85, "data-source marker targets slack", "slack")
	}
	if hasAggregateScope(n) {
		return keywordResult(IntentMultiMeeting, 0.8, "plural or aggregate meeting scope", "aggregate")
	}
	if meetingNounRe.MatchString(n) {
		return keywordResult(IntentSingleMeeting, 0.75, "single meeting context", "meeting")
	}
	if ourRe.MatchString(n) {
		return keywordResult(IntentProductKnowledge, 0.75, `"our X" phrasing targets internal product knowledge`, "our")
	}
	if researchRe.MatchString(n) {
		return keywordResult(IntentExternalResearch, 0.7, "external research phrasing", "research")
	}
	if helpRe.MatchString(n) {
		return keywordResult(IntentGeneralHelp, 0.7, "assistant usage question", "help")
	}
	return nil
}

func keywordResult(intent Intent, conf float64, reason, signal string) *IntentClassification {
	return &IntentClassification{
		Intent:          intent,
		Confidence:      conf,
		DetectionMethod: MethodPattern,
		Reason:          reason,
		Metadata:        DecisionMetadata{MatchedSignals: []string{"keyword:" + signal}},
	}
}

// DefaultMatchers returns the deterministic cascade in evaluation order.
func DefaultMatchers() []Matcher {
	return []Matcher{
		refusalMatcher{},
		greetingMatcher{},
		multiIntentMatcher{},
		entityMatcher{},
		keywordMatcher{},
	}
}

// CollectSignals gathers soft markers for the LLM validation call even when
// no deterministic tier fired.
func CollectSignals(normalized string) []string {
	var signals []string
	if hasSlackMarker(normalized) {
		signals = append(signals, "keyword:slack")
	}
	if hasAggregateScope(normalized) {
		signals = append(signals, "keyword:aggregate")
	}
	if meetingNounRe.MatchString(normalized) {
		signals = append(signals, "keyword:meeting")
	}
	if ourRe.MatchString(normalized) {
		signals = append(signals, "keyword:our")
	}
	if researchRe.MatchString(normalized) {
		signals = append(signals, "keyword:research")
	}
	return signals
}
