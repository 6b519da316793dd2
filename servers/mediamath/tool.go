package mediamath

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	mcp "github.com/hypermindz/mediamath-mcp"
	"github.com/hypermindz/mediamath-mcp/store"
)

// Paging control keys recognized by every find tool; everything else in the
// arguments is treated as a filter field.
var controlKeys = map[string]struct{}{
	"pageLimit": {},
	"cursor":    {},
	"sortBy":    {},
	"sortOrder": {},
}

// pageReply is the wire shape of every find result, rendered as a JSON text
// content block.
type pageReply struct {
	Data       []store.Record `json:"data"`
	Total      int            `json:"total"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
	HasMore    bool           `json:"hasMore"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

func jsonResult(v any) (mcp.CallToolResult, error) {
	text, err := json.Marshal(v)
	if err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.CallToolResult{
		Content: []mcp.Content{{Type: mcp.ContentTypeText, Text: string(text)}},
	}, nil
}

func validationError(format string, args ...any) *mcp.Error {
	return &mcp.Error{Category: mcp.CategoryValidationError, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) *mcp.Error {
	return &mcp.Error{Category: mcp.CategoryNotFound, Message: fmt.Sprintf(format, args...)}
}

// find implements the shared query path of every find tool: split the
// arguments into filter fields and paging controls, resolve the cursor, run
// the query and encode the next-page cursor when more data remains.
func (s *Server) find(collection string, raw json.RawMessage) (mcp.CallToolResult, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}

	rawFilter := make(map[string]any, len(args))
	for k, v := range args {
		if _, ok := controlKeys[k]; ok {
			continue
		}
		rawFilter[k] = v
	}

	filter, err := store.ParseFilter(rawFilter)
	if err != nil {
		return mcp.CallToolResult{}, validationError("invalid filter: %s", err.Error())
	}

	page := store.Page{Limit: store.MaxPageLimit}
	if v, ok := args["pageLimit"].(float64); ok {
		page.Limit = int(v)
	}

	sortBy, _ := args["sortBy"].(string)
	if token, ok := args["cursor"].(string); ok && token != "" {
		cursor, err := store.DecodeCursor(token)
		if err != nil {
			return mcp.CallToolResult{}, validationError("invalid cursor")
		}
		page.Offset = cursor.Offset
		// The cursor pins the sort it was produced under.
		sortBy = cursor.SortBy
	}

	var sortSpec *store.Sort
	if sortBy != "" {
		order := store.SortAsc
		if v, ok := args["sortOrder"].(string); ok && v == string(store.SortDesc) {
			order = store.SortDesc
		}
		sortSpec = &store.Sort{Field: sortBy, Order: order}
	}

	result := s.store.Collection(collection).Find(filter, sortSpec, &page)

	reply := pageReply{
		Data:    result.Data,
		Total:   result.Total,
		Offset:  result.Offset,
		Limit:   result.Limit,
		HasMore: result.HasMore,
	}
	if result.HasMore {
		reply.NextCursor = store.EncodeCursor(store.Cursor{
			Offset: result.Offset + len(result.Data),
			SortBy: sortBy,
		})
	}

	return jsonResult(reply)
}

// getByID implements the shared lookup path of every get_*_info tool.
func (s *Server) getByID(collection, argKey string, raw json.RawMessage) (store.Record, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, validationError("arguments must be a JSON object: %s", err.Error())
	}

	id, ok := args[argKey]
	if !ok || id == nil {
		return nil, validationError("%s is required", argKey)
	}

	rec, ok := s.store.Collection(collection).FindByID(id)
	if !ok {
		return nil, notFoundError("%s %v not found in %s", argKey, id, collection)
	}
	return rec, nil
}

// create implements the shared creation path: generate an id when the caller
// did not supply one, stamp created_at, store and notify.
func (s *Server) create(req mcp.ToolRequest, collection string, rec store.Record) (mcp.CallToolResult, error) {
	if _, ok := rec["id"]; !ok {
		rec["id"] = uuid.NewString()
	}
	if _, ok := rec["status"]; !ok {
		rec["status"] = "active"
	}
	rec["created_at"] = time.Now().UTC().Format(time.RFC3339)

	col := s.store.Collection(collection)
	if err := col.Create(rec); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return mcp.CallToolResult{}, &mcp.Error{
				Category: mcp.CategoryDuplicateKey,
				Message:  fmt.Sprintf("%s with id %v already exists", collection, rec["id"]),
			}
		}
		return mcp.CallToolResult{}, fmt.Errorf("create %s: %w", collection, err)
	}

	id, _ := store.NormalizeID(rec["id"])
	s.notifyChange(req.Session.ID, collection, id, "created")

	stored, _ := col.FindByID(rec["id"])
	return jsonResult(stored)
}

// update implements the shared partial-update path of every update tool.
func (s *Server) update(req mcp.ToolRequest, collection, argKey string, raw json.RawMessage) (mcp.CallToolResult, error) {
	var args struct {
		Updates map[string]any `json:"updates"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}

	var ids map[string]any
	if err := json.Unmarshal(raw, &ids); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}
	id := ids[argKey]

	if len(args.Updates) == 0 {
		return mcp.CallToolResult{}, validationError("updates must not be empty")
	}

	rec, err := s.store.Collection(collection).Update(id, args.Updates)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.CallToolResult{}, notFoundError("%s %v not found in %s", argKey, id, collection)
		}
		return mcp.CallToolResult{}, fmt.Errorf("update %s: %w", collection, err)
	}

	normID, _ := store.NormalizeID(id)
	s.notifyChange(req.Session.ID, collection, normID, "updated")

	return jsonResult(rec)
}

// delete implements the shared idempotent delete path.
func (s *Server) delete(req mcp.ToolRequest, collection, argKey string, raw json.RawMessage) (mcp.CallToolResult, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}
	id := args[argKey]

	deleted := s.store.Collection(collection).Delete(id)
	if deleted {
		normID, _ := store.NormalizeID(id)
		s.notifyChange(req.Session.ID, collection, normID, "deleted")
	}

	return jsonResult(map[string]any{"deleted": deleted})
}

// Campaigns.

func (s *Server) findCampaigns(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.find(collectionCampaigns, req.Arguments)
}

func (s *Server) getCampaignInfo(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionCampaigns, "campaign_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	// Attach the campaign's strategies for a one-call overview.
	strategies := s.store.Collection(collectionStrategies).Find(store.Filter{
		"campaign_id": {{Op: store.OpEq, Value: rec["id"]}},
	}, nil, nil)
	rec["strategies"] = strategies.Data

	return jsonResult(rec)
}

func (s *Server) createCampaign(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	var rec store.Record
	if err := json.Unmarshal(req.Arguments, &rec); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}

	// The creation argument is "budget"; the stored field is "total_budget".
	if budget, ok := rec["budget"]; ok {
		rec["total_budget"] = budget
		delete(rec, "budget")
	}

	return s.create(req, collectionCampaigns, rec)
}

func (s *Server) updateCampaign(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.update(req, collectionCampaigns, "campaign_id", req.Arguments)
}

func (s *Server) deleteCampaign(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.delete(req, collectionCampaigns, "campaign_id", req.Arguments)
}

func (s *Server) updateCampaignBudget(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	var args struct {
		CampaignID any     `json:"campaign_id"`
		Budget     float64 `json:"budget"`
	}
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}

	rec, err := s.store.Collection(collectionCampaigns).Update(args.CampaignID, store.Record{
		"total_budget": args.Budget,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.CallToolResult{}, notFoundError("campaign_id %v not found in campaigns", args.CampaignID)
		}
		return mcp.CallToolResult{}, fmt.Errorf("update campaign budget: %w", err)
	}

	normID, _ := store.NormalizeID(args.CampaignID)
	s.notifyChange(req.Session.ID, collectionCampaigns, normID, "updated")

	return jsonResult(rec)
}

func (s *Server) getBudgetAllocation(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	var args struct {
		OrganizationID any `json:"organization_id"`
	}
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}

	if !s.store.Collection(collectionOrganizations).Exists(args.OrganizationID) {
		return mcp.CallToolResult{}, notFoundError("organization_id %v not found in organizations", args.OrganizationID)
	}

	campaigns := s.store.Collection(collectionCampaigns).Find(store.Filter{
		"organization_id": {{Op: store.OpEq, Value: args.OrganizationID}},
	}, nil, nil)

	strategiesCol := s.store.Collection(collectionStrategies)

	var totalCampaignBudget, totalStrategyBudget float64
	budgetByGoal := map[string]float64{}
	budgetByType := map[string]float64{}
	allocations := make([]map[string]any, 0, len(campaigns.Data))

	for _, campaign := range campaigns.Data {
		budget := toNumber(campaign["total_budget"])
		totalCampaignBudget += budget

		goal, _ := campaign["goal_type"].(string)
		if goal == "" {
			goal = "unknown"
		}
		budgetByGoal[goal] += budget

		strategies := strategiesCol.Find(store.Filter{
			"campaign_id": {{Op: store.OpEq, Value: campaign["id"]}},
		}, nil, nil)

		var allocated float64
		for _, strategy := range strategies.Data {
			sb := toNumber(strategy["budget"])
			allocated += sb
			totalStrategyBudget += sb

			stype, _ := strategy["type"].(string)
			if stype == "" {
				stype = "unknown"
			}
			budgetByType[stype] += sb
		}

		allocations = append(allocations, map[string]any{
			"campaign_id":  campaign["id"],
			"name":         campaign["name"],
			"total_budget": budget,
			"allocated":    allocated,
			"remaining":    budget - allocated,
		})
	}

	var utilization float64
	if totalCampaignBudget > 0 {
		utilization = totalStrategyBudget / totalCampaignBudget * 100
	}

	return jsonResult(map[string]any{
		"organization_id":         args.OrganizationID,
		"total_campaigns":         len(campaigns.Data),
		"total_campaign_budget":   totalCampaignBudget,
		"total_strategy_budget":   totalStrategyBudget,
		"budget_utilization":      utilization,
		"budget_by_goal_type":     budgetByGoal,
		"budget_by_strategy_type": budgetByType,
		"campaigns":               allocations,
	})
}

// Strategies.

func (s *Server) findStrategies(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.find(collectionStrategies, req.Arguments)
}

func (s *Server) getStrategyInfo(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionStrategies, "strategy_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}
	return jsonResult(rec)
}

func (s *Server) createStrategy(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	var rec store.Record
	if err := json.Unmarshal(req.Arguments, &rec); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}

	// A strategy must hang off an existing campaign.
	campaign, ok := s.store.Collection(collectionCampaigns).FindByID(rec["campaign_id"])
	if !ok {
		return mcp.CallToolResult{}, notFoundError("campaign_id %v not found in campaigns", rec["campaign_id"])
	}
	if _, ok := rec["organization_id"]; !ok {
		rec["organization_id"] = campaign["organization_id"]
	}

	return s.create(req, collectionStrategies, rec)
}

func (s *Server) updateStrategy(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.update(req, collectionStrategies, "strategy_id", req.Arguments)
}

func (s *Server) deleteStrategy(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.delete(req, collectionStrategies, "strategy_id", req.Arguments)
}

// Audience segments.

func (s *Server) findAudienceSegments(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.find(collectionAudienceSegments, req.Arguments)
}

func (s *Server) getAudienceSegmentInfo(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionAudienceSegments, "segment_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}
	return jsonResult(rec)
}

func (s *Server) createAudienceSegment(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	var rec store.Record
	if err := json.Unmarshal(req.Arguments, &rec); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}
	return s.create(req, collectionAudienceSegments, rec)
}

func (s *Server) updateAudienceSegment(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.update(req, collectionAudienceSegments, "segment_id", req.Arguments)
}

func (s *Server) deleteAudienceSegment(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.delete(req, collectionAudienceSegments, "segment_id", req.Arguments)
}

// Creatives.

func (s *Server) findCreatives(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.find(collectionCreatives, req.Arguments)
}

func (s *Server) getCreativeInfo(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionCreatives, "creative_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}
	return jsonResult(rec)
}

func (s *Server) createCreative(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	var rec store.Record
	if err := json.Unmarshal(req.Arguments, &rec); err != nil {
		return mcp.CallToolResult{}, validationError("arguments must be a JSON object: %s", err.Error())
	}

	advertiser, ok := s.store.Collection(collectionAdvertisers).FindByID(rec["advertiser_id"])
	if !ok {
		return mcp.CallToolResult{}, notFoundError("advertiser_id %v not found in advertisers", rec["advertiser_id"])
	}
	if _, ok := rec["organization_id"]; !ok {
		rec["organization_id"] = advertiser["organization_id"]
	}

	return s.create(req, collectionCreatives, rec)
}

func (s *Server) updateCreative(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.update(req, collectionCreatives, "creative_id", req.Arguments)
}

func (s *Server) deleteCreative(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.delete(req, collectionCreatives, "creative_id", req.Arguments)
}

// Organizations and users.

func (s *Server) findOrganizations(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.find(collectionOrganizations, req.Arguments)
}

func (s *Server) getOrganizationInfo(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionOrganizations, "organization_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}
	return jsonResult(rec)
}

func (s *Server) findUsers(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.find(collectionUsers, req.Arguments)
}

func (s *Server) getUserInfo(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionUsers, "user_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}
	return jsonResult(rec)
}

// rolePermissions maps a user role onto the actions it may take. Unknown
// roles get the read-only baseline.
var rolePermissions = map[string][]string{
	"admin": {
		"manage_organization", "manage_users", "manage_campaigns",
		"manage_strategies", "manage_creatives", "manage_audiences",
		"view_reports", "manage_budgets",
	},
	"campaign_manager": {
		"manage_campaigns", "manage_strategies", "manage_creatives",
		"view_reports", "manage_budgets",
	},
	"analyst": {
		"view_reports",
	},
}

func (s *Server) getUserPermissions(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionUsers, "user_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	role, _ := rec["role"].(string)
	permissions, ok := rolePermissions[role]
	if !ok {
		permissions = []string{"view_reports"}
	}

	return jsonResult(map[string]any{
		"user_id":         rec["id"],
		"role":            role,
		"organization_id": rec["organization_id"],
		"permissions":     permissions,
		"access_level":    accessLevel(role),
	})
}

func accessLevel(role string) string {
	switch role {
	case "admin":
		return "full"
	case "campaign_manager":
		return "write"
	default:
		return "read"
	}
}

// Supply sources.

func (s *Server) findSupplySources(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	return s.find(collectionSupplySources, req.Arguments)
}

func (s *Server) getSupplySourceInfo(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionSupplySources, "supply_source_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}
	return jsonResult(rec)
}

func (s *Server) getSupplySourcePerformance(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	rec, err := s.getByID(collectionSupplySources, "supply_source_id", req.Arguments)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	metrics, _ := rec["metrics"].(map[string]any)
	if metrics == nil {
		metrics = map[string]any{}
	}

	return jsonResult(map[string]any{
		"supply_source_id": rec["id"],
		"name":             rec["name"],
		"type":             rec["type"],
		"metrics":          metrics,
	})
}

// Integrity.

func (s *Server) checkDataIntegrity(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
	report := s.store.ValidateReferentialIntegrity(integrityEdges)
	return jsonResult(report)
}

func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}
