package classify

import (
	"time"

	"AINewsCollector/internal/domain"
)

// DefaultRules returns the built-in category rules. Order is a designed
// priority: interview and research patterns are checked before the generic
// news terms.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category:   domain.CategoryInterview,
			KeywordsEN: []string{"interview", "q&a", "conversation with", "dialogue", "speaks with", "ama"},
			KeywordsZH: []string{"访谈", "采访", "专访", "对话", "问答"},
		},
		{
			Category:   domain.CategoryResearch,
			KeywordsEN: []string{"research", "paper", "study", "breakthrough", "arxiv", "academic", "benchmark"},
			KeywordsZH: []string{"论文", "研究", "学术", "突破", "科学家"},
		},
		{
			Category:   domain.CategoryProduct,
			KeywordsEN: []string{"launch", "release", "unveil", "introduce", "ships", "now available", "general availability"},
			KeywordsZH: []string{"发布", "推出", "上线", "开放使用"},
		},
		{
			Category:   domain.CategoryTechnical,
			KeywordsEN: []string{"how it works", "deep dive", "explained", "tutorial", "technical", "under the hood"},
			KeywordsZH: []string{"技术", "解析", "解读", "原理", "实战"},
		},
		{
			Category:   domain.CategoryOpinion,
			KeywordsEN: []string{"opinion", "commentary", "perspective", "why i", "the case for", "analysis"},
			KeywordsZH: []string{"观点", "评论", "看法", "见解"},
		},
		{
			Category:   domain.CategoryNews,
			KeywordsEN: []string{"news", "breaking", "report", "update", "announcement", "funding", "acquisition"},
			KeywordsZH: []string{"新闻", "动态", "报道", "消息", "融资", "收购"},
		},
	}
}

// DefaultCompanies returns the built-in company vocabulary with aliases in
// both languages.
func DefaultCompanies() []Company {
	return []Company{
		{Name: "OpenAI", Type: domain.SourceInternational, Aliases: []string{"OpenAI", "ChatGPT", "GPT"}},
		{Name: "Google", Type: domain.SourceInternational, Aliases: []string{"Google", "DeepMind", "Gemini"}, AliasesZH: []string{"谷歌"}},
		{Name: "Anthropic", Type: domain.SourceInternational, Aliases: []string{"Anthropic", "Claude"}},
		{Name: "Meta", Type: domain.SourceInternational, Aliases: []string{"Meta", "Llama", "Facebook"}},
		{Name: "Microsoft", Type: domain.SourceInternational, Aliases: []string{"Microsoft", "Copilot"}, AliasesZH: []string{"微软"}},
		{Name: "Apple", Type: domain.SourceInternational, Aliases: []string{"Apple", "Siri"}, AliasesZH: []string{"苹果"}},
		{Name: "Amazon", Type: domain.SourceInternational, Aliases: []string{"Amazon", "AWS", "Alexa"}, AliasesZH: []string{"亚马逊"}},
		{Name: "NVIDIA", Type: domain.SourceInternational, Aliases: []string{"NVIDIA", "CUDA"}, AliasesZH: []string{"英伟达"}},
		{Name: "百度", Type: domain.SourceDomestic, Aliases: []string{"Baidu", "ERNIE"}, AliasesZH: []string{"百度", "文心一言"}},
		{Name: "阿里巴巴", Type: domain.SourceDomestic, Aliases: []string{"Alibaba", "Tongyi", "Qwen"}, AliasesZH: []string{"阿里巴巴", "阿里", "通义千问"}},
		{Name: "腾讯", Type: domain.SourceDomestic, Aliases: []string{"Tencent", "Hunyuan"}, AliasesZH: []string{"腾讯", "混元"}},
		{Name: "字节跳动", Type: domain.SourceDomestic, Aliases: []string{"ByteDance", "TikTok", "Doubao"}, AliasesZH: []string{"字节跳动", "抖音", "豆包"}},
		{Name: "智谱AI", Type: domain.SourceDomestic, Aliases: []string{"Zhipu", "ChatGLM", "GLM"}, AliasesZH: []string{"智谱"}},
		{Name: "月之暗面", Type: domain.SourceDomestic, Aliases: []string{"Moonshot", "Kimi"}, AliasesZH: []string{"月之暗面"}},
		{Name: "华为", Type: domain.SourceDomestic, Aliases: []string{"Huawei", "Pangu"}, AliasesZH: []string{"华为", "盘古", "昇腾"}},
		{Name: "科大讯飞", Type: domain.SourceDomestic, Aliases: []string{"iFlytek"}, AliasesZH: []string{"科大讯飞", "星火"}},
	}
}

// DefaultTags returns the built-in technical-term vocabulary.
func DefaultTags() []Tag {
	return []Tag{
		{Name: "LLM", Aliases: []string{"LLM", "large language model", "大语言模型"}},
		{Name: "Transformer", Aliases: []string{"transformer"}},
		{Name: "Diffusion", Aliases: []string{"diffusion", "stable diffusion", "dall-e", "midjourney"}},
		{Name: "Computer Vision", Aliases: []string{"computer vision", "图像识别", "计算机视觉"}},
		{Name: "NLP", Aliases: []string{"NLP", "natural language processing", "自然语言处理"}},
		{Name: "Reinforcement Learning", Aliases: []string{"reinforcement learning", "强化学习"}},
		{Name: "Deep Learning", Aliases: []string{"deep learning", "深度学习"}},
		{Name: "Machine Learning", Aliases: []string{"machine learning", "机器学习"}},
		{Name: "AI Agent", Aliases: []string{"agent", "autonomous", "智能体"}},
		{Name: "Robotics", Aliases: []string{"robot", "robotics", "机器人"}},
		{Name: "AGI", Aliases: []string{"AGI", "artificial general intelligence", "通用人工智能"}},
	}
}

// DefaultImportancePolicy returns the built-in scoring weights. Research
// and product carry more weight than opinion; freshness earns a bonus that
// decays in two steps.
func DefaultImportancePolicy() ImportancePolicy {
	return ImportancePolicy{
		Base:          5,
		CompanyWeight: 1,
		CompanyCap:    3,
		CategoryWeights: map[domain.Category]int{
			domain.CategoryResearch:  2,
			domain.CategoryProduct:   2,
			domain.CategoryTechnical: 1,
			domain.CategoryNews:      1,
			domain.CategoryInterview: 1,
			domain.CategoryOpinion:   0,
		},
		FreshWithin:      24 * time.Hour,
		FreshBonus:       2,
		RecentWithin:     72 * time.Hour,
		RecentBonus:      1,
		LongSummaryRunes: 100,
		LongSummaryBonus: 1,
	}
}
