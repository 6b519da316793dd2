package mediamath

import (
	"context"
	"fmt"

	mcp "github.com/hypermindz/mediamath-mcp"
)

// RegisterPrompts registers the analysis prompt templates on the registry.
func (s *Server) RegisterPrompts(registry *mcp.PromptRegistry) error {
	for _, reg := range []struct {
		prompt  mcp.Prompt
		handler mcp.PromptHandler
	}{
		{mcp.Prompt{
			Name:        "campaign_performance_review",
			Description: "Walk through a campaign's strategies, budgets and status and summarize how it is performing.",
			Arguments: []mcp.PromptArgument{
				{Name: "campaign_id", Description: "The campaign to review", Required: true},
			},
		}, s.campaignPerformanceReview},
		{mcp.Prompt{
			Name:        "budget_reallocation_plan",
			Description: "Analyze an organization's budget utilization and propose a reallocation plan.",
			Arguments: []mcp.PromptArgument{
				{Name: "organization_id", Description: "The organization to analyze", Required: true},
				{Name: "target_utilization", Description: "Desired budget utilization percentage, defaults to 90"},
			},
		}, s.budgetReallocationPlan},
		{mcp.Prompt{
			Name:        "campaign_setup_checklist",
			Description: "Produce a step-by-step checklist for launching a new campaign for an advertiser.",
			Arguments: []mcp.PromptArgument{
				{Name: "advertiser_id", Description: "The advertiser the campaign runs for", Required: true},
				{Name: "goal_type", Description: "Campaign goal, e.g. reach, conversions, awareness"},
			},
		}, s.campaignSetupChecklist},
	} {
		if err := registry.Register(reg.prompt, reg.handler); err != nil {
			return fmt.Errorf("register prompt: %w", err)
		}
	}

	return nil
}

func (s *Server) campaignPerformanceReview(_ context.Context, params mcp.GetPromptParams) (mcp.GetPromptResult, error) {
	campaignID := params.Arguments["campaign_id"]

	return mcp.GetPromptResult{
		Description: "Campaign performance review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.Content{
					Type: mcp.ContentTypeText,
					Text: fmt.Sprintf("Review campaign %s. Use get_campaign_info to pull the campaign "+
						"and its strategies, then find_strategies for per-strategy budgets and bids. "+
						"Summarize total budget, allocated budget per strategy, status breakdown, and "+
						"flag strategies that are paused or have no budget assigned.", campaignID),
				},
			},
		},
	}, nil
}

func (s *Server) budgetReallocationPlan(_ context.Context, params mcp.GetPromptParams) (mcp.GetPromptResult, error) {
	orgID := params.Arguments["organization_id"]
	target := params.Arguments["target_utilization"]
	if target == "" {
		target = "90"
	}

	return mcp.GetPromptResult{
		Description: "Budget reallocation plan",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.Content{
					Type: mcp.ContentTypeText,
					Text: fmt.Sprintf("Build a budget reallocation plan for organization %s targeting %s%% "+
						"utilization. Call get_budget_allocation for the current picture, identify campaigns "+
						"with unallocated budget, and propose concrete update_campaign_budget and "+
						"update_strategy moves. Keep every campaign's allocated budget within its total.", orgID, target),
				},
			},
		},
	}, nil
}

func (s *Server) campaignSetupChecklist(_ context.Context, params mcp.GetPromptParams) (mcp.GetPromptResult, error) {
	advertiserID := params.Arguments["advertiser_id"]
	goal := params.Arguments["goal_type"]
	if goal == "" {
		goal = "reach"
	}

	return mcp.GetPromptResult{
		Description: "Campaign setup checklist",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.Content{
					Type: mcp.ContentTypeText,
					Text: fmt.Sprintf("Prepare a launch checklist for a new %s campaign for advertiser %s: "+
						"verify the advertiser with get_organization_info and find_creatives, create the "+
						"campaign with create_campaign, add at least one strategy per channel with "+
						"create_strategy, attach audience segments via find_audience_segments, and finish "+
						"with check_data_integrity to confirm all references resolve.", goal, advertiserID),
				},
			},
		},
	}, nil
}
