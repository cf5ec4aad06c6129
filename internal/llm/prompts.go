package llm

const extractBeliefsPrompt = `You are a belief extraction system for a writing coach. Analyze the writing samples below and extract the author's implicit beliefs: positions they consistently argue, whether or not they state them outright.

Extract:
1. core_beliefs: 5-7 foundational positions the author keeps returning to
2. overused_angles: 2-3 arguments the author leans on too often
3. emerging_thesis: one belief that is starting to form but is not yet fully argued (empty string if none)
4. tensions: pairs of extracted beliefs that conflict with each other

Each belief must be a single short statement in the author's voice.

For tensions, belief_a_index and belief_b_index are zero-based positions in the combined list (core_beliefs, then overused_angles, then emerging_thesis). Repeat the statement text and explain the conflict in summary.

Respond ONLY with JSON, no markdown fences:
{
  "core_beliefs": ["statement", "..."],
  "overused_angles": ["statement", "..."],
  "emerging_thesis": "statement or empty",
  "tensions": [{"belief_a_index": 0, "belief_b_index": 3, "belief_a_text": "...", "belief_b_text": "...", "summary": "why they conflict"}]
}

Writing samples:
%s`

const genealogyPrompt = `You are organizing a person's beliefs into a genealogy: a small forest where foundational beliefs are roots and every other belief supports exactly one parent.

Beliefs (zero-based index, type, statement):
%s

Rules:
- Pick 1-3 beliefs as roots: the most foundational positions the others derive from.
- Every non-root belief gets exactly one parent from this list.
- Keep the forest shallow: a belief should attach to the root or pillar it most directly supports.
- If a belief supports nothing in the list, make it a root.

Respond ONLY with JSON, no markdown fences:
{"root_indexes": [0], "links": [{"child_index": 1, "parent_index": 0}]}`

const alignmentPrompt = `You are scoring how well a candidate topic fits an author's established belief set.

Topic: %s
Audience: %s

Confirmed beliefs (id, statement):
%s

Score 0-100 how naturally the author can argue this topic from these beliefs:
- high (70-100): the topic flows directly from one or more beliefs
- medium (40-69): adjacent territory, arguable with some stretching
- low (0-39): outside or against the belief set

If the topic would force the author to argue against any listed belief, include those belief ids in conflicting_belief_ids.

Respond ONLY with JSON, no markdown fences:
{"level": "low|medium|high", "score": 0, "reasoning": "2-3 sentences", "conflicting_belief_ids": ["id"]}`

const outcomePrompt = `Infer the most likely goal of a piece of content from its topic and audience.

Topic: %s
Audience: %s

Pick exactly one outcome:
- authority: teach, demonstrate expertise
- engagement: provoke discussion, tell a story
- conversion: drive a purchase or signup
- connection: build trust through vulnerability

Respond ONLY with JSON, no markdown fences:
{"outcome": "authority|engagement|conversion|connection", "reasoning": "one sentence"}`
