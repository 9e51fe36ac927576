package chain

import (
	"regexp"

	"dealsense/internal/decision/contracts"
	"dealsense/internal/decision/intent"
)

// taskRule binds a message pattern to a named task. A rule contributes its
// task only when the regex matches AND the classified intent is listed.
// candidates are ordered; the first is the default contract before scope
// overrides. singleVariant and multiVariant, when set, force the
// scope-matched form of the task regardless of candidate order.
type taskRule struct {
	name           string
	re             *regexp.Regexp
	candidates     []contracts.AnswerContract
	allowedIntents []intent.Intent
	singleVariant  contracts.AnswerContract
	multiVariant   contracts.AnswerContract
}

func (r taskRule) allows(it intent.Intent) bool {
	for _, a := range r.allowedIntents {
		if a == it {
			return true
		}
	}
	return false
}

// taskRules is evaluated in order; earlier rules win the dedupe when two
// rules share a task name.
var taskRules = []taskRule{
	{
		name:           "extract_questions",
		re:             regexp.MustCompile(`(?i)\bquestions?\b.*\b(ask|asked|raised)\b|\b(their|customer|client|open) questions?\b`),
		candidates:     []contracts.AnswerContract{contracts.CustomerQuestions, contracts.CrossMeetingQuestions},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting, intent.IntentMultiMeeting},
		singleVariant:  contracts.CustomerQuestions,
		multiVariant:   contracts.CrossMeetingQuestions,
	},
	{
		name:           "extract_next_steps",
		re:             regexp.MustCompile(`(?i)\baction items?\b|\bnext steps?\b|\bto[- ]?dos?\b`),
		candidates:     []contracts.AnswerContract{contracts.NextSteps},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting},
	},
	{
		name:           "summarize_meeting",
		re:             regexp.MustCompile(`(?i)\bsummar(y|ize|ise)\b|\brecap\b`),
		candidates:     []contracts.AnswerContract{contracts.MeetingSummary},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting},
	},
	{
		name:           "extract_decisions",
		re:             regexp.MustCompile(`(?i)\bkey decisions?\b|\bdecisions? (made|reached)\b|\bagreed (on|to)\b`),
		candidates:     []contracts.AnswerContract{contracts.KeyDecisions},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting},
	},
	{
		name:           "pricing",
		re:             regexp.MustCompile(`(?i)\bpric(e|es|ing)\b|\bdiscount\b|\bbudget\b`),
		candidates:     []contracts.AnswerContract{contracts.PricingDiscussion},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting},
	},
	{
		name:           "competitors",
		re:             regexp.MustCompile(`(?i)\bcompetitors?\b|\bcompeting\b|\bvs\.?\s`),
		candidates:     []contracts.AnswerContract{contracts.CompetitorMentions},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting},
	},
	{
		name:           "analyze_patterns",
		re:             regexp.MustCompile(`(?i)\bcompare\b|\bpatterns?\b|\btrends?\b|\bcommon (theme|thread|objection)s?\b|\bacross\b`),
		candidates:     []contracts.AnswerContract{contracts.PatternAnalysis},
		allowedIntents: []intent.Intent{intent.IntentMultiMeeting},
	},
	{
		name:           "timeline",
		re:             regexp.MustCompile(`(?i)\btimeline\b|\bchronolog|\bover time\b`),
		candidates:     []contracts.AnswerContract{contracts.Timeline},
		allowedIntents: []intent.Intent{intent.IntentMultiMeeting},
	},
	{
		name:           "stakeholders",
		re:             regexp.MustCompile(`(?i)\bstakeholders?\b|\bdecision makers?\b|\bwho (was|is) (in|on) the\b`),
		candidates:     []contracts.AnswerContract{contracts.StakeholderMap},
		allowedIntents: []intent.Intent{intent.IntentMultiMeeting},
	},
	{
		name:           "risk_flags",
		re:             regexp.MustCompile(`(?i)\brisks?\b|\bred flags?\b|\bwarning signs?\b`),
		candidates:     []contracts.AnswerContract{contracts.RiskFlags},
		allowedIntents: []intent.Intent{intent.IntentMultiMeeting},
	},
	{
		name:           "sentiment",
		re:             regexp.MustCompile(`(?i)\bsentiment\b|\bmood\b|\bhow did .{0,40} feel\b`),
		candidates:     []contracts.AnswerContract{contracts.SentimentOverview},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting, intent.IntentMultiMeeting},
	},
	{
		name:           "objections",
		re:             regexp.MustCompile(`(?i)\bobjections?\b|\bpushback\b|\bconcerns raised\b`),
		candidates:     []contracts.AnswerContract{contracts.ObjectionAnalysis},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting, intent.IntentMultiMeeting},
	},
	{
		name:           "draft_followup",
		re:             regexp.MustCompile(`(?i)\b(draft|write|compose)\b.{0,60}\b(email|message|note)\b|\bfollow[- ]?up email\b`),
		candidates:     []contracts.AnswerContract{contracts.FollowupEmailDraft},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting},
	},
	{
		name:           "prep_brief",
		re:             regexp.MustCompile(`(?i)\bprep(are)?\b.{0,40}\b(meeting|call|demo)\b|\bbriefing\b|\bprep brief\b`),
		candidates:     []contracts.AnswerContract{contracts.MeetingPrepBrief},
		allowedIntents: []intent.Intent{intent.IntentSingleMeeting, intent.IntentMultiMeeting},
	},
	{
		name: "product_faq",
		re:   regexp.MustCompile(`(?i)\bfaq\b|\bis it possible to\b|\bdo(es)? (your|our|the) product\b`),
		candidates: []contracts.AnswerContract{
			contracts.FAQAnswer,
		},
		allowedIntents: []intent.Intent{intent.IntentProductKnowledge, intent.IntentSingleMeeting},
	},
	{
		name:           "product_explanation",
		re:             regexp.MustCompile(`(?i)\b(how does|what is|explain) our\b|\bour (product|platform|pricing model|roadmap)\b`),
		candidates:     []contracts.AnswerContract{contracts.ProductExplanation},
		allowedIntents: []intent.Intent{intent.IntentProductKnowledge},
	},
	{
		name:           "feature_gap",
		re:             regexp.MustCompile(`(?i)\bfeature gaps?\b|\bmissing features?\b|\bdoesn'?t support\b`),
		candidates:     []contracts.AnswerContract{contracts.FeatureGapAnalysis},
		allowedIntents: []intent.Intent{intent.IntentProductKnowledge, intent.IntentMultiMeeting},
	},
	{
		name:           "external_research",
		re:             regexp.MustCompile(`(?i)\bresearch\b|\bnews about\b|\bfunding\b|\bheadquartered\b`),
		candidates:     []contracts.AnswerContract{contracts.ExternalResearch},
		allowedIntents: []intent.Intent{intent.IntentExternalResearch},
	},
	{
		name:           "slack_thread",
		re:             regexp.MustCompile(`(?i)\bthread\b`),
		candidates:     []contracts.AnswerContract{contracts.SlackThreadSummary},
		allowedIntents: []intent.Intent{intent.IntentSlackSearch},
	},
	{
		name:           "slack_search",
		re:             regexp.MustCompile(`(?i)\bslack\b|#[\w-]+`),
		candidates:     []contracts.AnswerContract{contracts.SlackSearchResults},
		allowedIntents: []intent.Intent{intent.IntentSlackSearch},
	},
}

// extractTasks returns the matching rules in table order, deduplicated by
// task name.
func extractTasks(message string, it intent.Intent) []taskRule {
	var matched []taskRule
	seen := make(map[string]struct{}, len(taskRules))
	for _, rule := range taskRules {
		if !rule.allows(it) || !rule.re.MatchString(message) {
			continue
		}
		if _, dup := seen[rule.name]; dup {
			continue
		}
		seen[rule.name] = struct{}{}
		matched = append(matched, rule)
	}
	return matched
}
