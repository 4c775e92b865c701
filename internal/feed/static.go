package feed

import (
	"context"
	"time"

	"github.com/aithena-cloud/aithena/internal/domain/article"
)

type staticArticle struct {
	id     string
	title  string
	text   string
	source string
	url    string
}

// staticData holds the canned demonstration articles served when no news
// API key is configured.
var staticData = map[string][]staticArticle{
	"politics": {
		{
			id:     "politics_001",
			title:  "Congress Debates New Tech Regulation Bill",
			text:   "Senate committee advances comprehensive tech regulation addressing data privacy, algorithmic transparency, and AI governance. Industry experts divided on feasibility.",
			source: "Political Times",
			url:    "https://example.com/politics/001",
		},
		{
			id:     "politics_002",
			title:  "Election Year Brings Focus to Digital Rights",
			text:   "As 2024 approaches, candidates increasingly highlight digital privacy and net neutrality in campaign platforms. Tech executives respond with policy papers.",
			source: "Gov News",
			url:    "https://example.com/politics/002",
		},
	},
	"finance": {
		{
			id:     "finance_001",
			title:  "Tech Stocks Rally on AI Breakthroughs",
			text:   "Major technology companies see stock gains following announcements of advanced AI models. Investors reassess tech sector valuations amid renewed optimism.",
			source: "Finance Daily",
			url:    "https://example.com/finance/001",
		},
		{
			id:     "finance_002",
			title:  "Central Banks Maintain Interest Rates Amid Inflation Concerns",
			text:   "Federal Reserve and international central banks hold rates steady despite persistent inflation. Markets await next quarterly policy review.",
			source: "Economic Times",
			url:    "https://example.com/finance/002",
		},
	},
	"technology": {
		{
			id:     "technology_001",
			title:  "OpenAI Releases GPT-5 with Enhanced Reasoning Capabilities",
			text:   "Latest model demonstrates improved performance on complex reasoning tasks and multimodal understanding. Early adopters report significant productivity gains.",
			source: "Tech Review",
			url:    "https://example.com/tech/001",
		},
		{
			id:     "technology_002",
			title:  "Quantum Computing Achieves Practical Advantage in Drug Discovery",
			text:   "IBM and pharma companies announce breakthrough in using quantum computers for molecular simulation. Implications for drug development timeline acceleration.",
			source: "Science & Tech",
			url:    "https://example.com/tech/002",
		},
	},
}

// StaticSource serves canned articles for known topics. It backs demo runs
// and tests that must not hit the network.
type StaticSource struct{}

func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

// FetchFresh returns the canned articles for each requested topic; topics
// without canned data yield nothing.
func (s *StaticSource) FetchFresh(_ context.Context, topics []string) ([]article.Article, error) {
	now := time.Now()
	var out []article.Article
	for _, topic := range topics {
		for _, sa := range staticData[topic] {
			art, err := article.New(sa.id, sa.title, sa.text, sa.source, sa.url, now, []string{topic})
			if err != nil {
				continue
			}
			out = append(out, art)
		}
	}
	return out, nil
}
