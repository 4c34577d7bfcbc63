package bot

import (
	"regexp"
	"strings"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"github.com/rs/zerolog"
)

// MatchRule returns the first rule matching text, or nil. Rules with an
// invalid pattern are skipped.
func MatchRule(rules []entities.AutoReplyRule, text string, log zerolog.Logger) *entities.AutoReplyRule {
	lowered := strings.ToLower(text)
	for i := range rules {
		rule := &rules[i]
		switch rule.MatchType {
		case entities.MatchExact:
			if lowered == strings.ToLower(rule.Keyword) {
				return rule
			}
		case entities.MatchContains:
			if strings.Contains(lowered, strings.ToLower(rule.Keyword)) {
				return rule
			}
		case entities.MatchRegex:
			re, err := regexp.Compile(rule.Keyword)
			if err != nil {
				log.Warn().Err(err).Uint("rule", rule.ID).Msg("skipping auto reply rule with invalid pattern")
				continue
			}
			if re.MatchString(text) {
				return rule
			}
		}
	}
	return nil
}
