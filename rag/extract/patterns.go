package extract

import (
	"regexp"

	"github.com/smallnest/medgraph/rag/kgraph"
)

// entityPatterns are applied in order, per category, to lower-cased text.
var entityPatterns = map[kgraph.Category][]*regexp.Regexp{
	kgraph.Diseases: {
		regexp.MustCompile(`\b(?:diabetes|cancer|hypertension|asthma|stroke|pneumonia|influenza|malaria|covid-19|obesity|depression|infections?|disease)\b`),
		regexp.MustCompile(`\b(?:heart|cardiovascular|kidney|liver|lung|alzheimer's|parkinson's) disease\b`),
		regexp.MustCompile(`\b[a-z]+(?:itis|osis|emia|pathy)\b`),
	},
	kgraph.Symptoms: {
		regexp.MustCompile(`\b(?:fever|headaches?|pain|nausea|vomiting|fatigue|cough|dizziness|rash|swelling|inflammation|thirst|weakness|chills|diarrhea|insomnia|bleeding)\b`),
		regexp.MustCompile(`\b(?:shortness of breath|chest pain|blurred vision|weight loss)\b`),
	},
	kgraph.Treatments: {
		regexp.MustCompile(`\b(?:aspirin|paracetamol|acetaminophen|ibuprofen|antibiotics?|insulin|metformin|chemotherapy|radiotherapy|surgery|vaccines?|vaccination|medications?|medicine|drug|therapy|treatment)\b`),
		regexp.MustCompile(`\b[a-z]+(?:mycin|cillin|azole)\b`),
	},
	kgraph.Anatomy: {
		regexp.MustCompile(`\b(?:heart|lungs?|liver|kidneys?|brain|stomach|skin|blood|bones?|joints?|muscles?|pancreas|intestines?|spine|chest|throat|nerves?)\b`),
		regexp.MustCompile(`\bblood vessels?\b`),
	},
}

const word = `\b([a-z][a-z0-9'-]*)`

// relationTemplate maps a pattern with two capture groups to a relation.
// With swap set the second group is the subject.
type relationTemplate struct {
	relation string
	pattern  *regexp.Regexp
	swap     bool
}

var relationTemplates = []relationTemplate{
	{relation: "causes", pattern: regexp.MustCompile(word + `\s+(?:causes?|caused|leads?\s+to|led\s+to|results?\s+in)\s+(?:the\s+|a\s+|an\s+)?` + word)},
	{relation: "treated_with", pattern: regexp.MustCompile(word + `\s+(?:is|are|was|were|can\s+be|may\s+be)\s+treated\s+with\s+(?:the\s+|a\s+|an\s+)?` + word)},
	{relation: "treated_with", pattern: regexp.MustCompile(word + `\s+(?:therapy|treatment)\s+(?:for|of)\s+(?:the\s+)?` + word), swap: true},
	{relation: "treated_with", pattern: regexp.MustCompile(`(?:therapy|treatment)\s+(?:for|of)\s+` + word + `\s+(?:is|includes?|with)\s+` + word)},
	{relation: "has_symptom", pattern: regexp.MustCompile(word + `\s+symptoms\s+(?:include|are)\s+` + word)},
	{relation: "has_symptom", pattern: regexp.MustCompile(`symptoms\s+of\s+` + word + `\s+(?:include|are)\s+` + word)},
	{relation: "affects", pattern: regexp.MustCompile(word + `\s+(?:affects?|affected|impacts?|impacted)\s+(?:the\s+)?` + word)},
	{relation: "side_effect", pattern: regexp.MustCompile(`(?:side|adverse)\s+effects?\s+of\s+` + word + `\s+(?:include|are)\s+` + word)},
	{relation: "side_effect", pattern: regexp.MustCompile(word + `\s+(?:side|adverse)\s+effects?\s+(?:include|are)\s+` + word)},
}

// fillers never make a useful triple end.
var fillers = map[string]bool{
	"the": true, "and": true, "but": true, "this": true, "that": true, "which": true,
	"who": true, "what": true, "also": true, "often": true, "can": true, "may": true,
	"its": true, "their": true, "these": true, "those": true, "other": true, "common": true,
}
