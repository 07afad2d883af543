package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchCandidatesTool defines the search_candidates MCP tool.
var searchCandidatesTool = mcp.NewTool("search_candidates",
	mcp.WithDescription("Search the candidate pool with hybrid semantic and keyword retrieval. Returns ranked candidate profiles with contact details masked."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query, e.g. skills or a short job description"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of candidates to return (default 10)"),
	),
	mcp.WithString("role_category",
		mcp.Description("Restrict results to one role category"),
	),
	mcp.WithNumber("min_experience",
		mcp.Description("Minimum years of experience"),
	),
	mcp.WithNumber("max_experience",
		mcp.Description("Maximum years of experience"),
	),
	mcp.WithString("location",
		mcp.Description("Location substring to match"),
	),
	mcp.WithString("work_authorization",
		mcp.Description("Required work authorization, e.g. US Citizen"),
	),
)

// getCandidateTool defines the get_candidate MCP tool.
var getCandidateTool = mcp.NewTool("get_candidate",
	mcp.WithDescription("Fetch one candidate profile by id. Contact details are masked unless include_contact is set, and revealing them is audited."),
	mcp.WithString("candidate_id",
		mcp.Required(),
		mcp.Description("Candidate id, e.g. CAND_a1b2c3d4e5f6"),
	),
	mcp.WithBoolean("include_contact",
		mcp.Description("Include unmasked email and phone (audited)"),
	),
)

// listVacanciesTool defines the list_vacancies MCP tool.
var listVacanciesTool = mcp.NewTool("list_vacancies",
	mcp.WithDescription("List open vacancies with their required skills and status."),
	mcp.WithString("status",
		mcp.Description("Filter by vacancy status"),
		mcp.Enum("Open", "On Hold", "Closed", "Filled"),
	),
)

// vacancyMatchesTool defines the vacancy_matches MCP tool.
var vacancyMatchesTool = mcp.NewTool("vacancy_matches",
	mcp.WithDescription("Rank the candidate pool against one vacancy's requirements and return the top matches with their scores."),
	mcp.WithString("vacancy_id",
		mcp.Required(),
		mcp.Description("Vacancy id"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of matches to return (default 10)"),
	),
)
