// Package attribution classifies inbound lead events into their true
// originating channel. Meta delivers Facebook and Instagram leads through
// one webhook, so the channel has to be recovered from ad metadata.
package attribution

import "strings"

// Channel is the resolved originating sub-platform of a lead event.
type Channel string

const (
	ChannelFacebook  Channel = "Facebook"
	ChannelInstagram Channel = "Instagram"
)

// Method names the resolver stage that produced the classification.
type Method string

const (
	MethodExplicitPlatform Method = "explicit-platform"
	MethodFormName         Method = "form-name"
	MethodCampaignName     Method = "campaign-name"
	MethodInventoryName    Method = "inventory-name"
	MethodAdsetName        Method = "adset-name"
	MethodAdName           Method = "ad-name"
	MethodOrganicDefault   Method = "organic-default"
	MethodFallbackDefault  Method = "fallback-default"
)

// Confidence is a deterministic per-stage grade, not a probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Metadata is the ad metadata available for one lead event. InventoryName
// comes from the inventory matcher, so the matcher runs before Resolve.
type Metadata struct {
	ExplicitPlatform string
	FormName         string
	CampaignID       string
	CampaignName     string
	AdsetID          string
	AdsetName        string
	AdID             string
	AdName           string
	InventoryName    string
}

// Result is the outcome of channel attribution for one event.
type Result struct {
	Channel    Channel
	Method     Method
	Confidence Confidence
	// Defaulted is true when no metadata pointed at a channel and the
	// carried-over default-to-Facebook policy decided the outcome.
	Defaulted bool
}

// Resolve classifies the event. Stages run in a fixed order and the first
// match wins. The trailing default-to-Facebook policy is a historical
// heuristic kept for compatibility; it is known to be asymmetric.
func Resolve(meta Metadata) Result {
	if ch, ok := fromExplicitPlatform(meta.ExplicitPlatform); ok {
		return Result{Channel: ch, Method: MethodExplicitPlatform, Confidence: ConfidenceHigh}
	}
	if ch, ok := matchChannelToken(meta.FormName); ok {
		return Result{Channel: ch, Method: MethodFormName, Confidence: ConfidenceMedium}
	}
	if ch, ok := matchChannelToken(meta.CampaignName); ok {
		return Result{Channel: ch, Method: MethodCampaignName, Confidence: ConfidenceMedium}
	}
	if ch, ok := matchChannelToken(meta.InventoryName); ok {
		return Result{Channel: ch, Method: MethodInventoryName, Confidence: ConfidenceMedium}
	}
	if ch, ok := matchChannelToken(meta.AdsetName); ok {
		return Result{Channel: ch, Method: MethodAdsetName, Confidence: ConfidenceMedium}
	}
	if ch, ok := matchChannelToken(meta.AdName); ok {
		return Result{Channel: ch, Method: MethodAdName, Confidence: ConfidenceMedium}
	}

	if !hasCampaignData(meta) {
		// No campaign metadata at all: organic or direct traffic.
		return Result{Channel: ChannelFacebook, Method: MethodOrganicDefault, Confidence: ConfidenceLow, Defaulted: true}
	}

	// Campaign metadata present but carrying no channel token, e.g. a
	// generic campaign running on both platforms.
	return Result{Channel: ChannelFacebook, Method: MethodFallbackDefault, Confidence: ConfidenceLow, Defaulted: true}
}

// fromExplicitPlatform maps Meta's platform field directly to a channel.
func fromExplicitPlatform(platform string) (Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "":
		return "", false
	case "instagram", "ig":
		return ChannelInstagram, true
	default:
		// Meta only sends "facebook" or "instagram"; anything else is
		// treated as Facebook, the parent platform.
		return ChannelFacebook, true
	}
}

// matchChannelToken looks for channel-name substrings in a metadata field.
// Facebook tokens are checked first, mirroring the historical behavior.
func matchChannelToken(value string) (Channel, bool) {
	lower := strings.ToLower(value)
	if lower == "" {
		return "", false
	}
	if strings.Contains(lower, "facebook") || strings.Contains(lower, "fb") {
		return ChannelFacebook, true
	}
	if strings.Contains(lower, "instagram") || strings.Contains(lower, "ig") {
		return ChannelInstagram, true
	}
	return "", false
}

// hasCampaignData reports whether the event carried any campaign, adset
// or ad identifiers.
func hasCampaignData(meta Metadata) bool {
	return meta.CampaignID != "" || meta.CampaignName != "" ||
		meta.AdsetID != "" || meta.AdsetName != "" ||
		meta.AdID != "" || meta.AdName != ""
}
