package service

import "github.com/planwise/business-planner/internal/core/domain"

// seedPosts ship with the service so the blog is never empty.
var seedPosts = []domain.BlogPost{
	{
		ID:       "seed-writing-a-business-plan",
		Title:    "How to Write a Business Plan That Investors Read",
		Excerpt:  "The sections that matter, in the order investors look at them.",
		Content:  "Start with a one-page executive summary. Investors decide in minutes whether to keep reading, so lead with the problem, your solution, the market and the ask.\n\nFollow with market analysis backed by sources, a clear competitive landscape and financial projections that state their assumptions.",
		Category: "Strategy",
		Author:   "Planner Team",
		Date:     "2024-01-15",
	},
	{
		ID:       "seed-market-research-on-a-budget",
		Title:    "Market Research on a Shoestring Budget",
		Excerpt:  "Validate demand before you spend on product.",
		Content:  "Talk to twenty potential customers before writing code. Public census data, industry reports and competitor reviews give you a surprisingly complete picture for free.",
		Category: "Marketing",
		Author:   "Planner Team",
		Date:     "2024-02-02",
	},
	{
		ID:       "seed-cash-flow-basics",
		Title:    "Cash Flow Basics Every Founder Should Know",
		Excerpt:  "Profit is an opinion, cash is a fact.",
		Content:  "Track runway monthly. Separate one-off costs from recurring ones and model a pessimistic case alongside the plan you present.",
		Category: "Finance",
		Author:   "Planner Team",
		Date:     "2024-02-20",
	},
	{
		ID:       "seed-operations-checklist",
		Title:    "An Operations Checklist for Your First Year",
		Excerpt:  "Suppliers, tooling and the processes worth writing down early.",
		Content:  "Document the handful of processes you repeat weekly. Pick suppliers with backups and review tooling costs each quarter.",
		Category: "Operations",
		Author:   "Planner Team",
		Date:     "2024-03-05",
	},
}

// blogTopics rotate through automated generations.
var blogTopics = []string{
	"choosing a pricing strategy for a new product",
	"writing a compelling executive summary",
	"estimating total addressable market",
	"building a lean marketing plan",
	"forecasting first-year revenue",
	"hiring your first employee",
	"picking a legal structure for a startup",
	"preparing for an investor pitch",
}
