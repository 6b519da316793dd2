// Package mediamath implements an ad-platform tool server over the generic
// entity store: campaigns, strategies, audience segments, creatives,
// organizations, users and supply sources, exposed as MCP tools with
// filterable, cursor-paginated queries.
package mediamath

import (
	"fmt"
	"log/slog"

	mcp "github.com/hypermindz/mediamath-mcp"
	"github.com/hypermindz/mediamath-mcp/store"
)

// Collection names.
const (
	collectionOrganizations    = "organizations"
	collectionUsers            = "users"
	collectionAdvertisers      = "advertisers"
	collectionCampaigns        = "campaigns"
	collectionStrategies       = "strategies"
	collectionAudienceSegments = "audience_segments"
	collectionCreatives        = "creatives"
	collectionSupplySources    = "supply_sources"
)

// integrityEdges declares the foreign keys the integrity scan walks. Supply
// sources stand alone and have no edge.
var integrityEdges = []store.Edge{
	{FromCollection: collectionUsers, FKField: "organization_id", ToCollection: collectionOrganizations},
	{FromCollection: collectionAdvertisers, FKField: "organization_id", ToCollection: collectionOrganizations},
	{FromCollection: collectionCampaigns, FKField: "advertiser_id", ToCollection: collectionAdvertisers},
	{FromCollection: collectionCampaigns, FKField: "organization_id", ToCollection: collectionOrganizations},
	{FromCollection: collectionStrategies, FKField: "campaign_id", ToCollection: collectionCampaigns},
	{FromCollection: collectionAudienceSegments, FKField: "organization_id", ToCollection: collectionOrganizations},
	{FromCollection: collectionCreatives, FKField: "advertiser_id", ToCollection: collectionAdvertisers},
}

// Server wires the ad-platform tools to an entity store. Mutating tools push
// entity-change notifications to the calling session's event stream when a
// notifier is attached.
type Server struct {
	store    *store.Store
	notifier *mcp.NotificationServer
	logger   *slog.Logger
}

// Option represents the options for the mediamath server.
type Option func(*Server)

// WithNotifier attaches the push channel used for entity-change events.
func WithNotifier(notifier *mcp.NotificationServer) Option {
	return func(s *Server) {
		s.notifier = notifier
	}
}

// WithLogger sets the logger for the mediamath server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger.With(slog.String("component", "mediamath"))
	}
}

// NewServer creates an ad-platform server on top of the given store. The
// store is used as-is; call Seed to load the demo fixtures.
func NewServer(st *store.Store, options ...Option) *Server {
	s := &Server{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// RegisterTools registers every ad-platform tool on the registry.
func (s *Server) RegisterTools(registry *mcp.ToolRegistry) error {
	readOnly := mcp.ToolAnnotations{ReadOnly: true, Idempotent: true}
	mutating := mcp.ToolAnnotations{Idempotent: false}
	destructive := mcp.ToolAnnotations{Destructive: true, Idempotent: true}

	for _, reg := range []struct {
		tool    mcp.Tool
		handler mcp.ToolHandler
	}{
		{mcp.Tool{
			Name:        "find_campaigns",
			Description: "Find campaigns by organization, advertiser, status or goal type. Returns a paginated list with budget data.",
			InputSchema: findCampaignsSchema,
			Annotations: readOnly,
		}, s.findCampaigns},
		{mcp.Tool{
			Name:        "get_campaign_info",
			Description: "Get detailed campaign information including its strategies.",
			InputSchema: getCampaignInfoSchema,
			Annotations: readOnly,
		}, s.getCampaignInfo},
		{mcp.Tool{
			Name:        "create_campaign",
			Description: "Create a new campaign for an organization.",
			InputSchema: createCampaignSchema,
			Annotations: mutating,
		}, s.createCampaign},
		{mcp.Tool{
			Name:        "update_campaign",
			Description: "Update campaign properties like status, budget or name.",
			InputSchema: updateCampaignSchema,
			Annotations: mutating,
		}, s.updateCampaign},
		{mcp.Tool{
			Name:        "delete_campaign",
			Description: "Delete a campaign. Deleting an unknown campaign is a no-op.",
			InputSchema: deleteCampaignSchema,
			Annotations: destructive,
		}, s.deleteCampaign},
		{mcp.Tool{
			Name:        "update_campaign_budget",
			Description: "Set a campaign's total budget.",
			InputSchema: updateCampaignBudgetSchema,
			Annotations: mutating,
		}, s.updateCampaignBudget},
		{mcp.Tool{
			Name:        "get_budget_allocation",
			Description: "Aggregate budget allocation and utilization across an organization's campaigns and strategies.",
			InputSchema: getBudgetAllocationSchema,
			Annotations: readOnly,
		}, s.getBudgetAllocation},
		{mcp.Tool{
			Name:        "find_strategies",
			Description: "Find strategies by campaign, organization, status or type. Returns a paginated list with bid and budget info.",
			InputSchema: findStrategiesSchema,
			Annotations: readOnly,
		}, s.findStrategies},
		{mcp.Tool{
			Name:        "get_strategy_info",
			Description: "Get detailed strategy information.",
			InputSchema: getStrategyInfoSchema,
			Annotations: readOnly,
		}, s.getStrategyInfo},
		{mcp.Tool{
			Name:        "create_strategy",
			Description: "Create a new strategy under a campaign.",
			InputSchema: createStrategySchema,
			Annotations: mutating,
		}, s.createStrategy},
		{mcp.Tool{
			Name:        "update_strategy",
			Description: "Update strategy properties like status, bid or budget.",
			InputSchema: updateStrategySchema,
			Annotations: mutating,
		}, s.updateStrategy},
		{mcp.Tool{
			Name:        "delete_strategy",
			Description: "Delete a strategy. Deleting an unknown strategy is a no-op.",
			InputSchema: deleteStrategySchema,
			Annotations: destructive,
		}, s.deleteStrategy},
		{mcp.Tool{
			Name:        "find_audience_segments",
			Description: "Find audience segments by organization or status.",
			InputSchema: findAudienceSegmentsSchema,
			Annotations: readOnly,
		}, s.findAudienceSegments},
		{mcp.Tool{
			Name:        "get_audience_segment_info",
			Description: "Get detailed audience segment information.",
			InputSchema: getAudienceSegmentInfoSchema,
			Annotations: readOnly,
		}, s.getAudienceSegmentInfo},
		{mcp.Tool{
			Name:        "create_audience_segment",
			Description: "Create an audience segment for targeting.",
			InputSchema: createAudienceSegmentSchema,
			Annotations: mutating,
		}, s.createAudienceSegment},
		{mcp.Tool{
			Name:        "update_audience_segment",
			Description: "Update audience segment properties.",
			InputSchema: updateAudienceSegmentSchema,
			Annotations: mutating,
		}, s.updateAudienceSegment},
		{mcp.Tool{
			Name:        "delete_audience_segment",
			Description: "Delete an audience segment. Deleting an unknown segment is a no-op.",
			InputSchema: deleteAudienceSegmentSchema,
			Annotations: destructive,
		}, s.deleteAudienceSegment},
		{mcp.Tool{
			Name:        "find_creatives",
			Description: "Find creatives by organization, advertiser, status or type.",
			InputSchema: findCreativesSchema,
			Annotations: readOnly,
		}, s.findCreatives},
		{mcp.Tool{
			Name:        "get_creative_info",
			Description: "Get detailed creative information.",
			InputSchema: getCreativeInfoSchema,
			Annotations: readOnly,
		}, s.getCreativeInfo},
		{mcp.Tool{
			Name:        "create_creative",
			Description: "Create a new creative asset for an advertiser.",
			InputSchema: createCreativeSchema,
			Annotations: mutating,
		}, s.createCreative},
		{mcp.Tool{
			Name:        "update_creative",
			Description: "Update creative properties.",
			InputSchema: updateCreativeSchema,
			Annotations: mutating,
		}, s.updateCreative},
		{mcp.Tool{
			Name:        "delete_creative",
			Description: "Delete a creative. Deleting an unknown creative is a no-op.",
			InputSchema: deleteCreativeSchema,
			Annotations: destructive,
		}, s.deleteCreative},
		{mcp.Tool{
			Name:        "find_organizations",
			Description: "Find organizations, optionally filtered by name, status or country.",
			InputSchema: findOrganizationsSchema,
			Annotations: readOnly,
		}, s.findOrganizations},
		{mcp.Tool{
			Name:        "get_organization_info",
			Description: "Get detailed organization information.",
			InputSchema: getOrganizationInfoSchema,
			Annotations: readOnly,
		}, s.getOrganizationInfo},
		{mcp.Tool{
			Name:        "find_users",
			Description: "Find users by organization, role or status.",
			InputSchema: findUsersSchema,
			Annotations: readOnly,
		}, s.findUsers},
		{mcp.Tool{
			Name:        "get_user_info",
			Description: "Get detailed user information.",
			InputSchema: getUserInfoSchema,
			Annotations: readOnly,
		}, s.getUserInfo},
		{mcp.Tool{
			Name:        "get_user_permissions",
			Description: "Get a user's permissions and access levels derived from their role.",
			InputSchema: getUserPermissionsSchema,
			Annotations: readOnly,
		}, s.getUserPermissions},
		{mcp.Tool{
			Name:        "find_supply_sources",
			Description: "Find available supply sources for ad serving, optionally filtered by inventory type.",
			InputSchema: findSupplySourcesSchema,
			Annotations: readOnly,
		}, s.findSupplySources},
		{mcp.Tool{
			Name:        "get_supply_source_info",
			Description: "Get detailed supply source information.",
			InputSchema: getSupplySourceInfoSchema,
			Annotations: readOnly,
		}, s.getSupplySourceInfo},
		{mcp.Tool{
			Name:        "get_supply_source_performance",
			Description: "Get supply source performance metrics.",
			InputSchema: getSupplySourcePerformanceSchema,
			Annotations: readOnly,
		}, s.getSupplySourcePerformance},
		{mcp.Tool{
			Name:        "check_data_integrity",
			Description: "Scan all foreign-key references and report dangling ones.",
			InputSchema: checkDataIntegritySchema,
			Annotations: readOnly,
		}, s.checkDataIntegrity},
	} {
		if err := registry.Register(reg.tool, reg.handler); err != nil {
			return fmt.Errorf("register tool: %w", err)
		}
	}

	return nil
}

// notifyChange pushes an entity-change event to the calling session. Delivery
// is best-effort; a session with no open event stream misses the event.
func (s *Server) notifyChange(sessionID, collection, id, action string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(sessionID, mcp.MethodNotificationsEntitiesChanged, map[string]any{
		"collection": collection,
		"id":         id,
		"action":     action,
	})
}
