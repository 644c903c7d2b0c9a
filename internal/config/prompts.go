package config

// Built-in prompt templates, used when the config file does not override them.
// All of them are fmt.Sprintf templates; the caller supplies the %s slots.

const DefaultArbiterPrompt = `You are matching a scholar record against the official Nobel Prize registry.

<SAMPLE RECORD>
%s
</SAMPLE RECORD>

<REFERENCE RECORDS>
%s
</REFERENCE RECORDS>

Instructions:
Return the reference record id that is most likely the same person as the sample record.
- The result must contain ONLY ONE reference record id, taken from the list above.
- Also return the confidence level of the mapping based on your judgment.

Respond with a JSON object and nothing else:
{"output": <reference record id>, "confidence": "high" or "low"}
`

const DefaultScholarSummaryPrompt = `Write a short factual biography (2-3 sentences) of the scholar described below.
Use only the facts given. Do not speculate.

<FACTS>
%s
</FACTS>

Respond with a JSON object:
{"summary": "<the biography>"}
`

const DefaultLineageNamePrompt = `The following scholars form one academic mentorship lineage:

%s

Give the lineage a short descriptive name (e.g. after its most prominent member or shared field).

Respond with a JSON object:
{"name": "<the name>"}
`
