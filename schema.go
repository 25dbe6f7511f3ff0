package topicquiz

import "encoding/json"

// quizSchemaName is the json_schema name sent with the structured output request
const quizSchemaName = "quiz"

// quizSchema is the strict output schema for generated quizzes. Strict mode needs an
// object at the root, so the question array lives under "questions".
const quizSchema = `{
  "type": "object",
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "question": {
            "type": "string",
            "description": "The question text"
          },
          "options": {
            "type": "object",
            "properties": {
              "A": {"type": "string"},
              "B": {"type": "string"},
              "C": {"type": "string"},
              "D": {"type": "string"}
            },
            "required": ["A", "B", "C", "D"],
            "additionalProperties": false
          },
          "correctAnswer": {
            "type": "string",
            "enum": ["A", "B", "C", "D"],
            "description": "Key of the correct option"
          },
          "explanation": {
            "type": "string",
            "description": "Brief explanation of why the answer is correct"
          }
        },
        "required": ["question", "options", "correctAnswer", "explanation"],
        "additionalProperties": false
      }
    }
  },
  "required": ["questions"],
  "additionalProperties": false
}`

// quizSchemaJSON is quizSchema in the form go-openai expects
var quizSchemaJSON = json.RawMessage(quizSchema)

// quizPayload is the raw response before it becomes a Quiz
type quizPayload struct {
	Questions []Question `json:"questions"`
}
