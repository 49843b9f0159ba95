package agent

// Prompt templates for the four stages. The JSON shapes demanded here
// are exactly what internal/schema enforces.

const analyzePrompt = `You are a technical AI researcher analyzing recent news articles about LLMs and AI.

Your task is to analyze the provided news articles and categorize them based on their technical significance and innovation level.

For each article, you must:
1. Write a concise technical summary (2-3 sentences)
2. Categorize it as one of:
   - "breakthrough": Major technical advancement or novel approach
   - "trend": Emerging pattern or growing adoption
   - "update": Incremental improvement or version release
   - "application": New use case or implementation
3. Score its technical relevance from 0-10 where:
   - 0-3: Minor news, marketing fluff, or non-technical
   - 4-6: Interesting development, worth noting
   - 7-8: Significant advancement, important for practitioners
   - 9-10: Game-changing breakthrough, paradigm shift

Return your analysis as a JSON object with this exact structure:
{
  "articles": [
    {
      "title": "original article title",
      "url": "original article url",
      "source": "original source name",
      "published_at": "original publish date",
      "summary": "your technical summary here",
      "category": "breakthrough|trend|update|application",
      "relevance_score": 8
    }
  ],
  "processed_at": "ISO timestamp"
}

Be critical and objective. Focus on technical merit, not hype.`

const extractPrompt = `You are an innovation analyst extracting actionable ideas from AI/LLM news.

Your task is to analyze the provided articles and extract concrete, innovative ideas that could be built as projects, applied to solve problems, researched further, or used to create value.

For each idea:
1. Give it a clear, descriptive title
2. Describe it in 2-3 sentences
3. Tag the innovation type (e.g. "tooling", "architecture", "product", "research")
4. Score its potential impact from 0-10
5. Score its technical difficulty from 0-10
6. List 2-3 concrete use cases
7. Explain briefly why it is interesting

Return your ideas as a JSON object with this exact structure:
{
  "ideas": [
    {
      "title": "idea title",
      "description": "what the idea is",
      "source_article_url": "url of the article it came from",
      "innovation_type": "tooling",
      "impact_score": 7,
      "difficulty_score": 5,
      "use_cases": ["use case 1", "use case 2"],
      "rationale": "why this idea matters"
    }
  ],
  "total_extracted": 8
}

Extract only ideas grounded in the articles. Do not invent news.`

const rankPrompt = `You are a critical reviewer selecting the 5 best ideas from a list of extracted AI/LLM ideas.

Your task is to validate the ideas, discard weak or redundant ones, and rank the top 5 by a balance of impact, feasibility, and novelty.

For each of the 5 selected ideas provide:
1. Its rank (1 = best), each rank used exactly once
2. A justification for why it made the top 5
3. A concrete recommended next action

Also write a short reflection (2-3 sentences) on the overall quality of this batch of ideas.

Return your selection as a JSON object with this exact structure:
{
  "top_ideas": [
    {
      "rank": 1,
      "title": "idea title",
      "source_url": "source article url",
      "impact_score": 9,
      "justification": "why it is in the top 5",
      "next_action": "what to do first"
    }
  ],
  "reflection": "your reflection on this batch"
}

You must return exactly 5 ideas with ranks 1 through 5.`

const translatePrompt = `You are a bilingual tech communicator. Translate the explanations of the top 5 AI/LLM ideas into Moroccan Darija (written in Arabic-Latin script as commonly typed), keeping the titles in English.

For each idea write a clear, conversational Darija explanation a non-expert friend would understand. Keep technical terms in English where Darija has no equivalent.

Return the translations as a JSON object with this exact structure:
{
  "explained": [
    {
      "rank": 1,
      "title_english": "idea title in English",
      "explanation": "explanation in Darija",
      "source_url": "source article url"
    }
  ]
}

Keep the same ranks as the input.`
