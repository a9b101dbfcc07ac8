package scraper

import (
	"net/url"
	"path"
	"strings"

	"github.com/Farouk858/product-radar/engine"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// configToProto maps configured resource type names to CDP resource types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// heavyExtensions are asset file types aborted regardless of the resource
// type Chrome reports for them.
var heavyExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {}, ".gif": {}, ".svg": {},
	".mp4": {}, ".webm": {},
	".woff": {}, ".woff2": {}, ".ttf": {},
}

// blockedURL reports whether rawURL is a heavy asset or matches one of the
// tracker host patterns.
func blockedURL(rawURL string, hosts []string) bool {
	lower := strings.ToLower(rawURL)
	if u, err := url.Parse(lower); err == nil {
		if _, heavy := heavyExtensions[path.Ext(u.Path)]; heavy {
			return true
		}
	}
	for _, h := range hosts {
		if h != "" && strings.Contains(lower, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

// setupHijack installs a request interceptor that aborts requests matching
// policy. It returns nil when the policy blocks nothing; otherwise the
// caller must Stop the returned router.
func setupHijack(page *rod.Page, policy engine.BlockPolicy) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(policy.ResourceTypes))
	for _, name := range policy.ResourceTypes {
		if rt, ok := configToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 && len(policy.Hosts) == 0 {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, drop := blocked[ctx.Request.Type()]; drop {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if ctx.Request.Type() != proto.NetworkResourceTypeDocument &&
			blockedURL(ctx.Request.URL().String(), policy.Hosts) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop.
	go router.Run()

	return router
}
