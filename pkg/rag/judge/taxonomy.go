package judge

import "strings"

// QuestionType is the fixed question taxonomy used to pick a rubric
type QuestionType string

const (
	QuestionTypeRegulatory QuestionType = "regulatory"
	QuestionTypeProcedural QuestionType = "procedural"
	QuestionTypeSchedule   QuestionType = "schedule"
	QuestionTypeContact    QuestionType = "contact"
	QuestionTypeGeneral    QuestionType = "general"
)

// Keyword tables cover the bilingual corpus (English and Korean).
// Order matters: the first matching type wins.
var typeKeywords = []struct {
	qtype    QuestionType
	keywords []string
}{
	{QuestionTypeRegulatory, []string{
		"regulation", "policy", "rule", "limit", "allowance", "reimburs", "compliance", "permitted", "allowed",
		"규정", "지침", "정책", "한도", "기준",
	}},
	{QuestionTypeProcedural, []string{
		"how do i", "how to", "procedure", "process", "steps", "apply", "submit", "request",
		"절차", "신청", "방법", "제출",
	}},
	{QuestionTypeSchedule, []string{
		"when", "schedule", "deadline", "due date", "calendar", "until",
		"일정", "마감", "언제", "기한",
	}},
	{QuestionTypeContact, []string{
		"who", "contact", "phone", "email", "extension", "in charge", "responsible",
		"담당자", "연락처", "누구", "담당",
	}},
}

// ClassifyQuestionType maps the question onto the taxonomy by keyword
// matching. No model call is involved.
func ClassifyQuestionType(question string) QuestionType {
	lowered := strings.ToLower(question)

	for _, entry := range typeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.qtype
			}
		}
	}
	return QuestionTypeGeneral
}

// RubricDimension is one weighted scoring dimension
type RubricDimension struct {
	Name   string
	Weight int
	Guide  string
}

// Rubric is the four-dimension grading scheme for one question type
type Rubric struct {
	Dimensions [4]RubricDimension
}

// RubricFor returns the rubric matching the question type. Every rubric
// shares the same four dimensions; the guides shift emphasis per type.
func RubricFor(t QuestionType) Rubric {
	switch t {
	case QuestionTypeRegulatory:
		return Rubric{Dimensions: [4]RubricDimension{
			{Name: "completeness", Weight: 1, Guide: "States the full rule including exceptions and conditions"},
			{Name: "accuracy", Weight: 2, Guide: "Figures, limits and clause references match the source exactly"},
			{Name: "specificity", Weight: 1, Guide: "Cites concrete amounts, dates or clause numbers, not generalities"},
			{Name: "relevance", Weight: 1, Guide: "Addresses the asked regulation, not adjacent policies"},
		}}
	case QuestionTypeProcedural:
		return Rubric{Dimensions: [4]RubricDimension{
			{Name: "completeness", Weight: 2, Guide: "Lists every required step in order, none skipped"},
			{Name: "accuracy", Weight: 1, Guide: "Steps, forms and systems named correctly"},
			{Name: "specificity", Weight: 1, Guide: "Names the concrete forms, systems or people involved"},
			{Name: "relevance", Weight: 1, Guide: "Describes the asked procedure, not a similar one"},
		}}
	case QuestionTypeSchedule:
		return Rubric{Dimensions: [4]RubricDimension{
			{Name: "completeness", Weight: 1, Guide: "Covers all relevant dates and periods"},
			{Name: "accuracy", Weight: 2, Guide: "Dates and deadlines match the source exactly"},
			{Name: "specificity", Weight: 1, Guide: "Gives exact dates rather than vague timeframes"},
			{Name: "relevance", Weight: 1, Guide: "Answers for the asked event or period"},
		}}
	case QuestionTypeContact:
		return Rubric{Dimensions: [4]RubricDimension{
			{Name: "completeness", Weight: 1, Guide: "Provides name plus at least one way to reach them"},
			{Name: "accuracy", Weight: 2, Guide: "Names, departments and numbers match the source"},
			{Name: "specificity", Weight: 1, Guide: "Identifies the specific person or team, not just a department"},
			{Name: "relevance", Weight: 1, Guide: "The named contact actually owns the asked matter"},
		}}
	default:
		return Rubric{Dimensions: [4]RubricDimension{
			{Name: "completeness", Weight: 1, Guide: "Covers all parts of the question"},
			{Name: "accuracy", Weight: 1, Guide: "Statements are supported by the context"},
			{Name: "specificity", Weight: 1, Guide: "Concrete rather than generic"},
			{Name: "relevance", Weight: 1, Guide: "Stays on the asked topic"},
		}}
	}
}
