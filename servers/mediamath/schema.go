package mediamath

import "github.com/qri-io/jsonschema"

// Find tools accept filter fields alongside the paging controls. A filter
// value is either a literal (equality), an array (membership), or an operator
// object such as {"$gte": 1000} or {"$contains": "acme"}; the fields are left
// untyped in the schemas so all three shapes validate.

var findCampaignsSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "organization_id": { "description": "Filter by owning organization id" },
    "advertiser_id": { "description": "Filter by advertiser id" },
    "status": { "description": "Filter by status, e.g. active or paused" },
    "goal_type": { "description": "Filter by goal type, e.g. reach or conversions" },
    "name": { "description": "Filter by campaign name" },
    "total_budget": { "description": "Filter by total budget" },
    "pageLimit": { "type": "integer", "minimum": 1, "description": "Page size, capped at 25" },
    "cursor": { "type": "string", "description": "Opaque cursor from a previous page" },
    "sortBy": { "type": "string", "description": "Field to sort by" },
    "sortOrder": { "type": "string", "enum": ["asc", "desc"] }
  }
}`)

var getCampaignInfoSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "campaign_id": { "description": "The campaign id" }
  },
  "required": ["campaign_id"]
}`)

var createCampaignSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "name": { "type": "string", "description": "Campaign name" },
    "organization_id": { "description": "Owning organization id" },
    "advertiser_id": { "description": "Advertiser the campaign runs for" },
    "budget": { "type": "number", "minimum": 0, "description": "Total budget in USD" },
    "goal_type": { "type": "string", "description": "Campaign goal, e.g. reach, conversions, awareness" },
    "start_date": { "type": "string", "description": "Flight start date, YYYY-MM-DD" },
    "end_date": { "type": "string", "description": "Flight end date, YYYY-MM-DD" },
    "status": { "type": "string", "enum": ["active", "paused", "draft"] }
  },
  "required": ["name", "organization_id", "budget"]
}`)

var updateCampaignSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "campaign_id": { "description": "The campaign id" },
    "updates": {
      "type": "object",
      "description": "Partial campaign fields to merge, e.g. {\"status\": \"paused\"}"
    }
  },
  "required": ["campaign_id", "updates"]
}`)

var deleteCampaignSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "campaign_id": { "description": "The campaign id" }
  },
  "required": ["campaign_id"]
}`)

var updateCampaignBudgetSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "campaign_id": { "description": "The campaign id" },
    "budget": { "type": "number", "minimum": 0, "description": "New total budget in USD" }
  },
  "required": ["campaign_id", "budget"]
}`)

var getBudgetAllocationSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "organization_id": { "description": "The organization to aggregate budgets for" }
  },
  "required": ["organization_id"]
}`)

var findStrategiesSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "campaign_id": { "description": "Filter by parent campaign id" },
    "organization_id": { "description": "Filter by owning organization id" },
    "status": { "description": "Filter by status" },
    "type": { "description": "Filter by strategy type, e.g. display, video, mobile" },
    "name": { "description": "Filter by strategy name" },
    "budget": { "description": "Filter by budget" },
    "pageLimit": { "type": "integer", "minimum": 1 },
    "cursor": { "type": "string" },
    "sortBy": { "type": "string" },
    "sortOrder": { "type": "string", "enum": ["asc", "desc"] }
  }
}`)

var getStrategyInfoSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "strategy_id": { "description": "The strategy id" }
  },
  "required": ["strategy_id"]
}`)

var createStrategySchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "campaign_id": { "description": "Parent campaign id" },
    "name": { "type": "string", "description": "Strategy name" },
    "type": { "type": "string", "description": "Strategy type, e.g. display, video, mobile, native" },
    "budget": { "type": "number", "minimum": 0 },
    "bid": { "type": "number", "minimum": 0, "description": "Max bid in USD CPM" },
    "status": { "type": "string", "enum": ["active", "paused", "draft"] }
  },
  "required": ["campaign_id", "name", "type"]
}`)

var updateStrategySchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "strategy_id": { "description": "The strategy id" },
    "updates": {
      "type": "object",
      "description": "Partial strategy fields to merge, e.g. {\"bid\": 2.50}"
    }
  },
  "required": ["strategy_id", "updates"]
}`)

var deleteStrategySchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "strategy_id": { "description": "The strategy id" }
  },
  "required": ["strategy_id"]
}`)

var findAudienceSegmentsSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "organization_id": { "description": "Filter by owning organization id" },
    "status": { "description": "Filter by status" },
    "name": { "description": "Filter by segment name" },
    "pageLimit": { "type": "integer", "minimum": 1 },
    "cursor": { "type": "string" },
    "sortBy": { "type": "string" },
    "sortOrder": { "type": "string", "enum": ["asc", "desc"] }
  }
}`)

var getAudienceSegmentInfoSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "segment_id": { "description": "The audience segment id" }
  },
  "required": ["segment_id"]
}`)

var createAudienceSegmentSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "name": { "type": "string", "description": "Segment name" },
    "organization_id": { "description": "Owning organization id" },
    "description": { "type": "string", "description": "What the segment targets" },
    "size": { "type": "integer", "minimum": 0, "description": "Estimated audience size" }
  },
  "required": ["name", "organization_id"]
}`)

var updateAudienceSegmentSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "segment_id": { "description": "The audience segment id" },
    "updates": { "type": "object", "description": "Partial segment fields to merge" }
  },
  "required": ["segment_id", "updates"]
}`)

var deleteAudienceSegmentSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "segment_id": { "description": "The audience segment id" }
  },
  "required": ["segment_id"]
}`)

var findCreativesSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "organization_id": { "description": "Filter by owning organization id" },
    "advertiser_id": { "description": "Filter by advertiser id" },
    "status": { "description": "Filter by status" },
    "creative_type": { "description": "Filter by creative type, e.g. banner, video" },
    "name": { "description": "Filter by creative name" },
    "pageLimit": { "type": "integer", "minimum": 1 },
    "cursor": { "type": "string" },
    "sortBy": { "type": "string" },
    "sortOrder": { "type": "string", "enum": ["asc", "desc"] }
  }
}`)

var getCreativeInfoSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "creative_id": { "description": "The creative id" }
  },
  "required": ["creative_id"]
}`)

var createCreativeSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "name": { "type": "string", "description": "Creative name" },
    "advertiser_id": { "description": "Owning advertiser id" },
    "creative_type": { "type": "string", "description": "Asset type, e.g. banner, video, native" },
    "width": { "type": "integer", "minimum": 0 },
    "height": { "type": "integer", "minimum": 0 },
    "status": { "type": "string", "enum": ["active", "paused", "draft"] }
  },
  "required": ["name", "advertiser_id", "creative_type"]
}`)

var updateCreativeSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "creative_id": { "description": "The creative id" },
    "updates": { "type": "object", "description": "Partial creative fields to merge" }
  },
  "required": ["creative_id", "updates"]
}`)

var deleteCreativeSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "creative_id": { "description": "The creative id" }
  },
  "required": ["creative_id"]
}`)

var findOrganizationsSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "name": { "description": "Filter by organization name" },
    "status": { "description": "Filter by status" },
    "country": { "description": "Filter by country code" },
    "pageLimit": { "type": "integer", "minimum": 1 },
    "cursor": { "type": "string" },
    "sortBy": { "type": "string" },
    "sortOrder": { "type": "string", "enum": ["asc", "desc"] }
  }
}`)

var getOrganizationInfoSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "organization_id": { "description": "The organization id" }
  },
  "required": ["organization_id"]
}`)

var findUsersSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "organization_id": { "description": "Filter by organization id" },
    "role": { "description": "Filter by role, e.g. admin, campaign_manager, analyst" },
    "status": { "description": "Filter by status" },
    "email": { "description": "Filter by email" },
    "pageLimit": { "type": "integer", "minimum": 1 },
    "cursor": { "type": "string" },
    "sortBy": { "type": "string" },
    "sortOrder": { "type": "string", "enum": ["asc", "desc"] }
  }
}`)

var getUserInfoSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "user_id": { "description": "The user id" }
  },
  "required": ["user_id"]
}`)

var getUserPermissionsSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "user_id": { "description": "The user id" }
  },
  "required": ["user_id"]
}`)

var findSupplySourcesSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "type": { "description": "Filter by inventory type, e.g. display, video, mobile" },
    "status": { "description": "Filter by status" },
    "name": { "description": "Filter by supply source name" },
    "pageLimit": { "type": "integer", "minimum": 1 },
    "cursor": { "type": "string" },
    "sortBy": { "type": "string" },
    "sortOrder": { "type": "string", "enum": ["asc", "desc"] }
  }
}`)

var getSupplySourceInfoSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "supply_source_id": { "description": "The supply source id" }
  },
  "required": ["supply_source_id"]
}`)

var getSupplySourcePerformanceSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "supply_source_id": { "description": "The supply source id" }
  },
  "required": ["supply_source_id"]
}`)

var checkDataIntegritySchema = jsonschema.Must(`{
  "type": "object",
  "properties": {}
}`)
