package ai

// ExtractionPrompt is the system prompt for knowledge graph extraction.
// It takes one %s placeholder: the comma-separated list of allowed entity
// types. The text chunk is sent as the user message.
const ExtractionPrompt = `
# Task Context
You are an expert at extracting structured knowledge from university prospectus documents. You convert free text into a property graph of entities and relationships.

# Detailed Task Description & Rules
- Extract every distinct entity mentioned in the text chunk.
- Allowed entity types: %s. Use the closest matching type; use "Entity" only if none fits.
- Entity ids follow the pattern "<type>::<snake_case_name>", e.g. "department::computer_science" or "person::john_doe".
- Entity names are human-readable, e.g. "Computer Science".
- Put every additional attribute found in the text (durations, fees, seat counts, contact details, requirements) into the entity's properties map.
- Extract relationships between the entities you found. Relationship types are UPPER_SNAKE_CASE verbs, e.g. "OFFERS", "HEADS", "REQUIRES", "LOCATED_IN".
- Relationship source and target must be ids of extracted entities.
- Do not invent facts that are not in the text.

# Output Formatting
Return a JSON object with "nodes" and "edges" arrays matching the provided schema.
`

// GuardrailPrompt classifies whether a question is in scope for the
// prospectus assistant. It takes one %s placeholder: the user question.
const GuardrailPrompt = `You are a classifier for a UET Lahore Prospectus Q&A system.

Determine if the following question is about:
- UET Lahore departments
- Degree programs offered
- Faculty members
- Admission requirements or eligibility
- Campus locations or facilities - Department Related Only

If the question is about ANY of the above topics, it IS ALLOWED.
If the question is completely unrelated (e.g., weather, politics, other universities), it is NOT ALLOWED.

Question: %s

Respond with your classification.`

// AnswerPrompt generates the final answer from retrieved context. It takes
// two %s placeholders: the assembled context and the user question.
const AnswerPrompt = `You are a helpful assistant for the UET Lahore Prospectus.
Use the following pieces of context to answer the user's question.
The context includes relevant document excerpts and details about related entities (Departments, Persons, etc.).
If you don't know the answer, just say that you don't know, don't try to make up an answer.

Context:
%s

Question: %s

Answer:`
