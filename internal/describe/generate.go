// Package describe writes a project description from the structured project
// fields and tracks whether the user has taken ownership of that text.
package describe

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/templui/folio/internal/datemath"
	"github.com/templui/folio/internal/model"
)

// tense holds the per-status wording of each clause. %s marks where the
// field text goes.
type tense struct {
	framing     string
	goal        string
	problem     string
	challenges  string
	tools       string
	skills      string
	improve     string
	subjectVerb string
}

var tenses = map[model.ProjectStatus]tense{
	model.ProjectStatusPlanned: {
		subjectVerb: "is",
		framing:     "planned",
		goal:        "The main goal will be %s.",
		problem:     "It will address %s.",
		challenges:  "Expected challenges include %s.",
		tools:       "It will be built with %s.",
		skills:      "It will draw on %s.",
		improve:     "Skills to improve along the way: %s.",
	},
	model.ProjectStatusInProgress: {
		subjectVerb: "is",
		framing:     "ongoing",
		goal:        "The main goal is %s.",
		problem:     "It addresses %s.",
		challenges:  "Current challenges include %s.",
		tools:       "It is being built with %s.",
		skills:      "It draws on %s.",
		improve:     "Skills being improved: %s.",
	},
	model.ProjectStatusCompleted: {
		subjectVerb: "was",
		framing:     "completed",
		goal:        "The main goal was %s.",
		problem:     "It addressed %s.",
		challenges:  "Key challenges included %s.",
		tools:       "It was built with %s.",
		skills:      "It drew on %s.",
		improve:     "Skills to keep improving: %s.",
	},
}

var primaryGoals = map[string]string{
	"learning":  "to learn new skills",
	"portfolio": "to build a portfolio piece",
	"career":    "to advance my career",
	"client":    "to deliver work for a client",
	"product":   "to launch a product",
	"research":  "to explore a research question",
	"fun":       "to have fun building something",
}

// Generate builds the description. Clauses whose source field is empty are
// left out; the wording follows the status tense.
func Generate(f model.ProjectFields) string {
	t, ok := tenses[f.Status]
	if !ok {
		t = tenses[model.ProjectStatusPlanned]
	}

	var sentences []string
	sentences = append(sentences, framing(f, t))

	if f.Status == model.ProjectStatusCompleted {
		if d, ok := datemath.DurationPhrase(f.StartDate, f.EndDate); ok {
			sentences = append(sentences, "It took "+d+" to complete.")
		}
	}

	if goal := primaryGoal(f.PrimaryGoal); goal != "" {
		sentences = append(sentences, fill(t.goal, goal))
	}
	if s := clause(f.ProblemSolved); s != "" {
		sentences = append(sentences, fill(t.problem, s))
	}
	if s := clause(f.ChallengesShort); s != "" {
		sentences = append(sentences, fill(t.challenges, s))
	}
	if s := list(f.ToolsUsed); s != "" {
		sentences = append(sentences, fill(t.tools, s))
	}
	if s := list(f.SkillsUsed); s != "" {
		sentences = append(sentences, fill(t.skills, s))
	}
	if s := list(f.SkillsToImprove); s != "" {
		sentences = append(sentences, fill(t.improve, s))
	}

	return strings.Join(sentences, " ")
}

func framing(f model.ProjectFields, t tense) string {
	subject := strings.TrimSpace(f.Title)
	if subject == "" {
		subject = "This project"
	}

	words := []string{t.framing}
	switch f.WorkType {
	case model.WorkTypeIndividual:
		words = append(words, "individual")
	case model.WorkTypeTeam:
		words = append(words, "team")
	}
	words = append(words, "project")

	noun := strings.Join(words, " ")
	return subject + " " + t.subjectVerb + " " + article(noun) + " " + noun + "."
}

func primaryGoal(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if phrase, ok := primaryGoals[strings.ToLower(v)]; ok {
		return phrase
	}
	return clause(v)
}

func fill(format, value string) string {
	return strings.Replace(format, "%s", value, 1)
}

func article(noun string) string {
	r, _ := utf8.DecodeRuneInString(noun)
	if strings.ContainsRune("aeiou", r) {
		return "an"
	}
	return "a"
}

var lower = cases.Lower(language.English)

// clause trims free text for use mid-sentence: trailing punctuation goes and
// a capitalized first word is lowered unless it looks like an acronym.
func clause(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimRight(v, ".!; ")
	if v == "" {
		return ""
	}

	first, rest, _ := strings.Cut(v, " ")
	if isCapitalized(first) {
		first = lower.String(first)
	}
	if rest == "" {
		return first
	}
	return first + " " + rest
}

func isCapitalized(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// list splits comma, semicolon or newline separated items and joins them as
// "a, b and c". Duplicates are dropped case-insensitively.
func list(v string) string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})

	seen := map[string]bool{}
	var items []string
	for _, item := range fields {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}

	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
