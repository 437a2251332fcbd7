package prompt

import (
	"strings"

	"github.com/poiesic/lectio/core"
)

// Placeholders substituted by SystemPrompt.
const (
	FollowupPlaceholder = "{follow_up_questions_prompt}"
	InjectedPlaceholder = "{injected_prompt}"
)

// InjectPrefix marks a template override that is appended to the default
// template instead of replacing it.
const InjectPrefix = ">>>"

// ChatSystemTemplate is the default system prompt of the chat approach.
const ChatSystemTemplate = `Assistant helps employees with questions about a collection of public legal contracts. Be brief in your answers.
Answer ONLY with the facts listed in the list of sources below. If there isn't enough information below, say you don't know. Do not generate answers that don't use the sources below. If asking a clarifying question to the user would help, ask the question.
For tabular information return it as an html table. Do not return markdown format. If the question is not in English, answer in the language used in the question.
Each source has a name followed by colon and the actual information, always include the source name for each fact you use in the response. Use square brackets to reference the source, for example [info1.txt]. Don't combine sources, list each source separately, for example [info1.txt][info2.pdf].
` + FollowupPlaceholder + `
` + InjectedPlaceholder

// AskSystemTemplate is the default system prompt of the ask approach.
const AskSystemTemplate = `You are an intelligent assistant helping employees with questions about a collection of public legal contracts. ` +
	`Use 'you' to refer to the individual asking the questions even if they ask with 'I'. ` +
	`Answer the following question using only the data provided in the sources below. ` +
	`For tabular information return it as an html table. Do not return markdown format. ` +
	`Each source has a name followed by colon and the actual information, always include the source name for each fact you use in the response. ` +
	`If you cannot answer using the sources below, say you don't know.
` + InjectedPlaceholder

// FollowupQuestionsPrompt asks the model to append follow-up questions in
// double angle brackets.
const FollowupQuestionsPrompt = `Generate 3 very brief follow-up questions that the user would likely ask next.
Enclose the follow-up questions in double angle brackets. Example:
<<Are there penalties for late delivery?>>
<<Which party pays for the insurance?>>
<<When does the contract expire?>>
Do not repeat questions that have already been asked.
Make sure the last question ends with ">>".`

// QueryPromptTemplate is the system prompt used to derive a search query
// from the conversation.
const QueryPromptTemplate = `Below is a history of the conversation so far, and a new question asked by the user that needs to be answered by searching in a knowledge base.
You have access to a search index with hundreds of documents.
Generate a search query based on the conversation and the new question.
Do not include cited source filenames and document names e.g info.txt or doc.pdf in the search query terms.
Do not include any text inside [] or <<>> in the search query terms.
Do not include any special characters like '+'.
If the question is not in English, translate the question to English before generating the search query.
If you cannot generate a search query, return just the number 0.`

// QueryFewShots are the examples that precede the conversation when deriving
// a search query.
var QueryFewShots = []core.FewShotExample{
	{User: "What is the average value of these contracts?", Assistant: "Show contract values"},
	{User: "Are there any contracts for tire disposal?", Assistant: "Contracts for disposal of unusable tires"},
}

// AskFewShots is the sample exchange included with every ask prompt.
var AskFewShots = []core.FewShotExample{
	{
		User: `'What is the average value of these contracts?'

Sources:
contract1.pdf: This contract, valid from 11/30/2023 to 11/30/2024, is for services related to the receipt, storage and final disposal of unusable tires. The contract value is $154,800.00.
contract2.pdf: This contract is for the acquisition of items at a total cost of $469,899.99. Payments will be made from specific budget allocations.
contract3.pdf: This contract, which does not allow subcontracting, is for the provision of services at a total cost of $663,500.00. The cost includes all direct and indirect expenses related to the execution of the contract.
contract4.pdf: This contract is for specialized services preparing technical reports. The total value of the contract is $1,200.00. Payment will be made within 30 days after the invoice is issued.`,
		Assistant: "The average value of the contracts is $322,349.99 [contract1.pdf][contract2.pdf][contract3.pdf][contract4.pdf]. " +
			"This is calculated by adding the total values ($154,800.00, $469,899.99, $663,500.00, $1,200.00) and dividing by the number of contracts (4).",
	},
}

// SystemPrompt renders a system prompt template.
//
// An empty override renders the template with no injected text. An override
// starting with InjectPrefix is injected into the template. Any other
// override replaces the template. followups fills the follow-up questions
// placeholder and may be empty.
func SystemPrompt(template, override, followups string) string {
	injected := ""
	switch {
	case override == "":
	case strings.HasPrefix(override, InjectPrefix):
		injected = strings.TrimPrefix(override, InjectPrefix) + "\n"
	default:
		template = override
	}
	r := strings.NewReplacer(FollowupPlaceholder, followups, InjectedPlaceholder, injected)
	return strings.TrimRight(r.Replace(template), "\n")
}
