package mediamath

import (
	"fmt"

	"github.com/hypermindz/mediamath-mcp/store"
)

// Seed loads the demo fixtures into the store so the server answers with
// realistic data on boot. Calling it on a store that already holds any of the
// fixture ids fails with a duplicate-key error.
func Seed(st *store.Store) error {
	for _, batch := range []struct {
		collection string
		records    []store.Record
	}{
		{collectionOrganizations, seedOrganizations},
		{collectionUsers, seedUsers},
		{collectionAdvertisers, seedAdvertisers},
		{collectionCampaigns, seedCampaigns},
		{collectionStrategies, seedStrategies},
		{collectionAudienceSegments, seedAudienceSegments},
		{collectionCreatives, seedCreatives},
		{collectionSupplySources, seedSupplySources},
	} {
		col := st.Collection(batch.collection)
		for _, rec := range batch.records {
			if err := col.Create(rec); err != nil {
				return fmt.Errorf("seed %s %v: %w", batch.collection, rec["id"], err)
			}
		}
	}

	return nil
}

var seedOrganizations = []store.Record{
	{"id": 100048, "name": "HyperMindz Media", "status": "active", "country": "US", "currency": "USD"},
	{"id": 100049, "name": "Northwind Brands", "status": "active", "country": "GB", "currency": "GBP"},
	{"id": 100050, "name": "Luminary Labs", "status": "inactive", "country": "US", "currency": "USD"},
}

var seedUsers = []store.Record{
	{"id": 111, "name": "Dana Whitfield", "email": "dana@hypermindz.example", "role": "admin", "organization_id": 100048, "status": "active"},
	{"id": 112, "name": "Marcus Oyelaran", "email": "marcus@hypermindz.example", "role": "campaign_manager", "organization_id": 100048, "status": "active"},
	{"id": 113, "name": "Priya Raman", "email": "priya@hypermindz.example", "role": "analyst", "organization_id": 100048, "status": "active"},
	{"id": 114, "name": "Elin Sorensen", "email": "elin@northwind.example", "role": "campaign_manager", "organization_id": 100049, "status": "active"},
}

var seedAdvertisers = []store.Record{
	{"id": 5001, "name": "Aurora Footwear", "organization_id": 100048, "vertical": "retail", "status": "active"},
	{"id": 5002, "name": "Peak Fitness Co", "organization_id": 100048, "vertical": "health", "status": "active"},
	{"id": 5003, "name": "Northwind Travel", "organization_id": 100049, "vertical": "travel", "status": "active"},
}

var seedCampaigns = []store.Record{
	{"id": 12345, "name": "Spring Sneaker Launch", "advertiser_id": 5001, "organization_id": 100048, "status": "active", "goal_type": "reach", "total_budget": 50000.0, "start_date": "2025-03-01", "end_date": "2025-05-31"},
	{"id": 12346, "name": "Summer Clearance", "advertiser_id": 5001, "organization_id": 100048, "status": "active", "goal_type": "conversions", "total_budget": 30000.0, "start_date": "2025-06-01", "end_date": "2025-08-15"},
	{"id": 12347, "name": "Gym Membership Drive", "advertiser_id": 5002, "organization_id": 100048, "status": "active", "goal_type": "conversions", "total_budget": 45000.0, "start_date": "2025-01-05", "end_date": "2025-12-20"},
	{"id": 12348, "name": "Wellness App Install", "advertiser_id": 5002, "organization_id": 100048, "status": "active", "goal_type": "installs", "total_budget": 25000.0, "start_date": "2025-04-01", "end_date": "2025-09-30"},
	{"id": 12349, "name": "Brand Awareness Q3", "advertiser_id": 5001, "organization_id": 100048, "status": "active", "goal_type": "awareness", "total_budget": 60000.0, "start_date": "2025-07-01", "end_date": "2025-09-30"},
	{"id": 12350, "name": "Holiday Teaser", "advertiser_id": 5001, "organization_id": 100048, "status": "paused", "goal_type": "awareness", "total_budget": 20000.0, "start_date": "2025-11-01", "end_date": "2025-12-24"},
	{"id": 12351, "name": "Winter Getaways", "advertiser_id": 5003, "organization_id": 100049, "status": "active", "goal_type": "reach", "total_budget": 40000.0, "start_date": "2025-10-01", "end_date": "2026-01-31"},
}

var seedStrategies = []store.Record{
	{"id": 67890, "name": "Sneaker Display Prospecting", "campaign_id": 12345, "organization_id": 100048, "type": "display", "status": "active", "budget": 20000.0, "bid": 2.5},
	{"id": 67891, "name": "Sneaker Video Retargeting", "campaign_id": 12345, "organization_id": 100048, "type": "video", "status": "active", "budget": 18000.0, "bid": 8.0},
	{"id": 67892, "name": "Clearance Mobile Push", "campaign_id": 12346, "organization_id": 100048, "type": "mobile", "status": "active", "budget": 15000.0, "bid": 1.75},
	{"id": 67893, "name": "Gym Display Local", "campaign_id": 12347, "organization_id": 100048, "type": "display", "status": "active", "budget": 22000.0, "bid": 3.1},
	{"id": 67894, "name": "Gym Video Testimonials", "campaign_id": 12347, "organization_id": 100048, "type": "video", "status": "paused", "budget": 10000.0, "bid": 9.25},
	{"id": 67895, "name": "App Install Mobile", "campaign_id": 12348, "organization_id": 100048, "type": "mobile", "status": "active", "budget": 19000.0, "bid": 2.2},
	{"id": 67896, "name": "Awareness Native", "campaign_id": 12349, "organization_id": 100048, "type": "native", "status": "active", "budget": 25000.0, "bid": 4.0},
	{"id": 67897, "name": "Getaway Video CTV", "campaign_id": 12351, "organization_id": 100049, "type": "video", "status": "active", "budget": 28000.0, "bid": 12.5},
}

var seedAudienceSegments = []store.Record{
	{"id": 301, "name": "Sneakerheads 18-34", "organization_id": 100048, "status": "active", "description": "Frequent athletic footwear buyers", "size": 1200000},
	{"id": 302, "name": "Fitness Intenders", "organization_id": 100048, "status": "active", "description": "Searched gym memberships in the last 30 days", "size": 840000},
	{"id": 303, "name": "Lapsed Purchasers", "organization_id": 100048, "status": "paused", "description": "No purchase in 90 days", "size": 450000},
	{"id": 304, "name": "Winter Sun Seekers", "organization_id": 100049, "status": "active", "description": "Browsed warm destinations", "size": 620000},
}

var seedCreatives = []store.Record{
	{"id": 98765, "name": "Sneaker Hero 300x250", "advertiser_id": 5001, "organization_id": 100048, "creative_type": "banner", "width": 300, "height": 250, "status": "active"},
	{"id": 98766, "name": "Sneaker Spot 15s", "advertiser_id": 5001, "organization_id": 100048, "creative_type": "video", "duration": 15, "status": "active"},
	{"id": 98767, "name": "Gym Offer 728x90", "advertiser_id": 5002, "organization_id": 100048, "creative_type": "banner", "width": 728, "height": 90, "status": "active"},
	{"id": 98768, "name": "Beach Escape 30s", "advertiser_id": 5003, "organization_id": 100049, "creative_type": "video", "duration": 30, "status": "draft"},
}

var seedSupplySources = []store.Record{
	{"id": 88888, "name": "OpenReach Exchange", "type": "display", "status": "active",
		"metrics": map[string]any{"impressions": 125000000, "fill_rate": 0.82, "avg_cpm": 2.1, "viewability": 0.68}},
	{"id": 88889, "name": "StreamVault CTV", "type": "video", "status": "active",
		"metrics": map[string]any{"impressions": 18000000, "fill_rate": 0.91, "avg_cpm": 14.75, "viewability": 0.95}},
	{"id": 88890, "name": "PocketAds Mobile", "type": "mobile", "status": "active",
		"metrics": map[string]any{"impressions": 64000000, "fill_rate": 0.77, "avg_cpm": 1.6, "viewability": 0.59}},
}
